// Package seat manages the dedicated MPX master pointer/keyboard pair the
// virtual devices are attached to.
package seat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/xseat/internal/platform"
)

const (
	DefaultAttachSettleDelay = 500 * time.Millisecond
	DefaultDiscoveryTimeout  = 3 * time.Second
	DefaultPollInterval      = 50 * time.Millisecond
)

// Backend is the slice of platform.Backend the manager needs.
type Backend interface {
	ListInputDevices() ([]platform.InputDevice, error)
	CreateSeat(label string) error
	AttachDevice(deviceID, masterID int) error
	RemoveSeat(masterID int) error
}

// Config holds manager settings. Zero durations take the defaults.
type Config struct {
	AttachSettleDelay time.Duration
	DiscoveryTimeout  time.Duration
	PollInterval      time.Duration
	ReclaimStale      bool
	Logger            *slog.Logger

	// Sleep replaces time.Sleep for the attach settle pause.
	Sleep func(time.Duration)
}

// Seat is a created master pair.
type Seat struct {
	Label      string
	PointerID  int
	KeyboardID int

	removed bool
}

// PointerName is the label the server gives the seat's master pointer.
func PointerName(label string) string { return label + " pointer" }

// KeyboardName is the label the server gives the seat's master keyboard.
func KeyboardName(label string) string { return label + " keyboard" }

// Manager creates, populates and removes seats.
type Manager struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger
}

// NewManager creates a seat manager.
func NewManager(backend Backend, cfg Config) *Manager {
	if cfg.AttachSettleDelay <= 0 {
		cfg.AttachSettleDelay = DefaultAttachSettleDelay
	}
	if cfg.DiscoveryTimeout <= 0 {
		cfg.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, cfg: cfg, logger: logger}
}

// FindDeviceID looks a device up by name. Exact mode compares the device's
// label field; otherwise name may appear anywhere in the listing line.
func (m *Manager) FindDeviceID(name string, exact bool) (int, bool, error) {
	devices, err := m.backend.ListInputDevices()
	if err != nil {
		return 0, false, fmt.Errorf("list input devices: %w", err)
	}
	id, ok := findDevice(devices, name, exact)
	return id, ok, nil
}

func findDevice(devices []platform.InputDevice, name string, exact bool) (int, bool) {
	for _, d := range devices {
		if exact {
			if d.Name == name {
				return d.ID, true
			}
			continue
		}
		if strings.Contains(d.Line, name) {
			return d.ID, true
		}
	}
	return 0, false
}

// WaitDeviceID polls until the named device is enumerated or the discovery
// timeout passes. Freshly created uinput devices show up asynchronously.
func (m *Manager) WaitDeviceID(ctx context.Context, name string, exact bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.DiscoveryTimeout)
	defer cancel()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		id, ok, err := m.FindDeviceID(name, exact)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, nil
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("device %q not found after %s: %w", name, m.cfg.DiscoveryTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Create makes a new master pair named after label and resolves its member
// ids. A leftover pair with the same label is removed first when
// ReclaimStale is set and rejected otherwise.
func (m *Manager) Create(ctx context.Context, label string) (*Seat, error) {
	if strings.TrimSpace(label) == "" {
		return nil, platform.SeatErr("create", fmt.Errorf("seat label is required"))
	}

	devices, err := m.backend.ListInputDevices()
	if err != nil {
		return nil, platform.SeatErr("create", fmt.Errorf("list input devices: %w", err))
	}
	if staleID, ok := findDevice(devices, PointerName(label), true); ok {
		if !m.cfg.ReclaimStale {
			return nil, platform.SeatErr("create", fmt.Errorf("seat %q already exists (pointer id %d); run `xseat cleanup`", label, staleID))
		}
		m.logger.Warn("removing stale seat", "label", label, "pointer_id", staleID)
		if err := m.backend.RemoveSeat(staleID); err != nil {
			return nil, platform.SeatErr("remove stale seat", err)
		}
	}

	if err := m.backend.CreateSeat(label); err != nil {
		return nil, platform.SeatErr("create "+label, err)
	}

	s := &Seat{Label: label}
	if s.PointerID, err = m.WaitDeviceID(ctx, PointerName(label), false); err != nil {
		return nil, m.abandon(s, platform.SeatErr("resolve pointer", err))
	}
	if s.KeyboardID, err = m.WaitDeviceID(ctx, KeyboardName(label), false); err != nil {
		return nil, m.abandon(s, platform.SeatErr("resolve keyboard", err))
	}

	m.logger.Debug("seat created", "label", label, "pointer_id", s.PointerID, "keyboard_id", s.KeyboardID)
	return s, nil
}

// abandon removes a half-resolved seat. The original error is returned.
func (m *Manager) abandon(s *Seat, cause error) error {
	if s.PointerID == 0 {
		id, ok, err := m.FindDeviceID(PointerName(s.Label), true)
		if err != nil || !ok {
			return cause
		}
		s.PointerID = id
	}
	if err := m.backend.RemoveSeat(s.PointerID); err != nil {
		m.logger.Warn("failed to remove incomplete seat", "label", s.Label, "error", err)
	}
	return cause
}

// Attach reparents a device under a seat member and waits for the server to
// settle, so consecutive attaches are always separated by the settle delay.
func (m *Manager) Attach(deviceID, memberID int) error {
	if err := m.backend.AttachDevice(deviceID, memberID); err != nil {
		return platform.SeatErr(fmt.Sprintf("attach %d to %d", deviceID, memberID), err)
	}
	m.cfg.Sleep(m.cfg.AttachSettleDelay)
	return nil
}

// Remove destroys the seat. Removing an already removed seat, or one the
// server no longer lists, succeeds.
func (m *Manager) Remove(s *Seat) error {
	if s == nil || s.removed {
		return nil
	}

	id, ok, err := m.FindDeviceID(PointerName(s.Label), true)
	if err != nil {
		return platform.SeatErr("remove "+s.Label, err)
	}
	if !ok || id != s.PointerID {
		s.removed = true
		m.logger.Debug("seat already gone", "label", s.Label, "pointer_id", s.PointerID)
		return nil
	}

	if err := m.backend.RemoveSeat(s.PointerID); err != nil {
		return platform.SeatErr("remove "+s.Label, err)
	}
	s.removed = true
	return nil
}

// RemoveByLabel removes a leftover seat by label. It reports whether a seat
// was found.
func (m *Manager) RemoveByLabel(label string) (bool, error) {
	id, ok, err := m.FindDeviceID(PointerName(label), true)
	if err != nil {
		return false, platform.SeatErr("cleanup "+label, err)
	}
	if !ok {
		return false, nil
	}
	if err := m.backend.RemoveSeat(id); err != nil {
		return true, platform.SeatErr("cleanup "+label, err)
	}
	return true, nil
}
