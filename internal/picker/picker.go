// Package picker lets a person choose the target window for a session.
package picker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/xseat/internal/platform"
)

// ErrCancelled is returned when the user quits without choosing a window.
var ErrCancelled = errors.New("window selection cancelled")

// Picker chooses one window from a listing.
type Picker interface {
	Pick(windows []platform.Window) (platform.Window, error)
}

// Label renders a window the way every picker shows it.
func Label(w platform.Window) string {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = fmt.Sprintf("0x%x", uint32(w.ID))
	}
	return fmt.Sprintf("%s (%dx%d) at position (%d,%d)", name, w.Width, w.Height, w.X, w.Y)
}

// New returns the picker configured by name.
//
// Supported names: terminal, tui, auto, rofi, fuzzel, wofi, dmenu.
func New(name string) (Picker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "terminal":
		return NewTerminal(), nil
	case "tui":
		return NewTUI(), nil
	default:
		return NewPalette(name)
	}
}
