// Package runtimepath locates per-user runtime state, such as the record of
// the session currently holding a seat.
package runtimepath

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Dir returns the runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/xseat-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/xseat-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SessionStatePath returns the state file for the seat with the given label.
func SessionStatePath(label string) (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "xseat-"+fileSafe(label)+".json"), nil
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// SessionState records which process owns a seat and its devices.
type SessionState struct {
	PID          int    `json:"pid"`
	Seat         string `json:"seat"`
	PointerName  string `json:"pointer_name"`
	KeyboardName string `json:"keyboard_name"`
	Window       uint32 `json:"window"`
	// ForcedAbove is set when the session made Window always-on-top and
	// must clear it again.
	ForcedAbove bool      `json:"forced_above,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// Alive reports whether the owning process still exists.
func (s SessionState) Alive() bool {
	if s.PID <= 0 {
		return false
	}
	err := unix.Kill(s.PID, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// WriteSessionState stores state for its seat, replacing any previous file.
func WriteSessionState(state SessionState) error {
	path, err := SessionStatePath(state.Seat)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// ReadSessionState returns the recorded state for label, or nil when none
// exists.
func ReadSessionState(label string) (*SessionState, error) {
	path, err := SessionStatePath(label)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session state %s: %w", path, err)
	}
	return &state, nil
}

// RemoveSessionState deletes the state file for label. A missing file is
// not an error.
func RemoveSessionState(label string) error {
	path, err := SessionStatePath(label)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session state: %w", err)
	}
	return nil
}
