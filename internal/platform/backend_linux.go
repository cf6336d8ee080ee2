//go:build linux

package platform

import (
	"fmt"
	"image"

	"github.com/1broseidon/xseat/internal/uinput"
	"github.com/1broseidon/xseat/internal/x11"
	"github.com/1broseidon/xseat/internal/xinput"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend implements Backend with X11 for windows and capture, uinput
// for virtual devices and xinput for the seat hierarchy.
type LinuxBackend struct {
	conn       *x11.Connection
	xinput     *xinput.Client
	uinputPath string
}

var _ Backend = (*LinuxBackend)(nil)

// LinuxOption customizes a LinuxBackend.
type LinuxOption func(*LinuxBackend)

// WithUinputPath overrides the uinput device node.
func WithUinputPath(path string) LinuxOption {
	return func(b *LinuxBackend) { b.uinputPath = path }
}

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, opts ...LinuxOption) *LinuxBackend {
	b := &LinuxBackend{
		conn:       conn,
		xinput:     xinput.NewClient(nil),
		uinputPath: uinput.DefaultPath,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(opts ...LinuxOption) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, ProbeErr("connect", err)
	}
	return NewLinuxBackend(conn, opts...), nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Monitors returns the active RandR outputs.
func (b *LinuxBackend) Monitors() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		name := m.Name
		if m.Primary {
			name += " (primary)"
		}
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	return displays, nil
}

// Resolution returns the size of the whole X screen.
func (b *LinuxBackend) Resolution() (Size, error) {
	conn, err := b.connection()
	if err != nil {
		return Size{}, err
	}
	w, h, err := conn.ScreenSize()
	if err != nil {
		return Size{}, err
	}
	return Size{Width: w, Height: h}, nil
}

// WindowGeometry returns a window's absolute geometry.
func (b *LinuxBackend) WindowGeometry(id WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	g, err := conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}, nil
}

// FrameExtents returns decoration insets, zero when unavailable.
func (b *LinuxBackend) FrameExtents(id WindowID) Extents {
	conn, err := b.connection()
	if err != nil {
		return Extents{}
	}
	l, r, t, bo := conn.GetFrameExtents(xproto.Window(id))
	return Extents{Left: l, Right: r, Top: t, Bottom: bo}
}

// ListWindows returns the named, non-hidden managed windows.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	infos, err := conn.VisibleWindows()
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(infos))
	for _, w := range infos {
		windows = append(windows, Window{
			ID:     WindowID(w.ID),
			Name:   w.Name,
			X:      w.Geometry.X,
			Y:      w.Geometry.Y,
			Width:  w.Geometry.Width,
			Height: w.Geometry.Height,
		})
	}
	return windows, nil
}

// ActivateWindow focuses and raises a window.
func (b *LinuxBackend) ActivateWindow(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(xproto.Window(id))
}

// CreateDevice registers a uinput device.
func (b *LinuxBackend) CreateDevice(name string, caps Capabilities) (VirtualDevice, error) {
	setup := uinput.Setup{Keys: caps.Keys, Rel: caps.Rel}
	for _, a := range caps.Abs {
		setup.Abs = append(setup.Abs, uinput.AbsAxis{Code: a.Code, Min: a.Min, Max: a.Max})
	}
	dev, err := uinput.Create(b.uinputPath, name, setup)
	if err != nil {
		return nil, err
	}
	return &uinputDevice{Device: dev, caps: caps}, nil
}

// ListInputDevices enumerates X input devices.
func (b *LinuxBackend) ListInputDevices() ([]InputDevice, error) {
	devices, err := b.xinput.List()
	if err != nil {
		return nil, err
	}
	out := make([]InputDevice, 0, len(devices))
	for _, d := range devices {
		master := 0
		if !d.IsMaster() {
			master = d.Paired
		}
		out = append(out, InputDevice{
			ID:     d.ID,
			Name:   d.Name,
			Line:   d.Line,
			Role:   d.Role,
			Master: master,
		})
	}
	return out, nil
}

// CreateSeat creates an MPX master pair.
func (b *LinuxBackend) CreateSeat(label string) error {
	return b.xinput.CreateMaster(label)
}

// AttachDevice reattaches a slave device to a master.
func (b *LinuxBackend) AttachDevice(deviceID, masterID int) error {
	return b.xinput.Reattach(deviceID, masterID)
}

// RemoveSeat removes an MPX master pair.
func (b *LinuxBackend) RemoveSeat(masterID int) error {
	return b.xinput.RemoveMaster(masterID)
}

// WindowAbove reports whether the window is always-on-top.
func (b *LinuxBackend) WindowAbove(id WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	return conn.IsAbove(xproto.Window(id))
}

// SetWindowAbove adds or removes the always-on-top state.
func (b *LinuxBackend) SetWindowAbove(id WindowID, above bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetAbove(xproto.Window(id), above)
}

// Capture grabs the whole screen.
func (b *LinuxBackend) Capture() (*image.RGBA, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	return conn.CaptureRoot()
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// uinputDevice adapts a uinput.Device to VirtualDevice.
type uinputDevice struct {
	*uinput.Device
	caps Capabilities
}

func (d *uinputDevice) Capabilities() Capabilities { return d.caps }
