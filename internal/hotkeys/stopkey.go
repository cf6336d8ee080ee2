package hotkeys

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/xseat/internal/x11"
)

// StopKey grabs a global key sequence on a private X connection and runs a
// callback when it is pressed. The grab is a core passive grab on the root
// window, which a keyboard on another master can also trigger; sessions pass
// ChordKeys(sequence) to the executor so the agent cannot press it.
type StopKey struct {
	conn     *x11.Connection
	sequence string
	done     chan struct{}
}

// Listen opens a connection to $DISPLAY, grabs sequence (xgbutil syntax such
// as "Control-Mod4-Escape") on the root window and starts the event loop.
func Listen(sequence string, onPress func()) (*StopKey, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	xu := conn.XUtil
	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	err = keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
		onPress()
	}).Connect(xu, conn.Root, sequence, true)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to grab %q: %w", sequence, err)
	}

	s := &StopKey{conn: conn, sequence: sequence, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		xevent.Main(xu)
	}()
	return s, nil
}

// Sequence returns the grabbed key sequence.
func (s *StopKey) Sequence() string {
	return s.sequence
}

// Close releases the grab and stops the event loop.
func (s *StopKey) Close() {
	if s == nil {
		return
	}
	xu := s.conn.XUtil
	keybind.Detach(xu, s.conn.Root)
	xevent.Quit(xu)
	s.conn.Close()
	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}
}

// configureIgnoreMods makes the grab fire regardless of lock modifiers.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")
	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the distinct non-zero lock masks,
// including the empty one.
func ignoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	seen := map[uint16]bool{0: true}
	for _, m := range locks {
		if !seen[m] {
			seen[m] = true
			base = append(base, m)
		}
	}

	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// ChordKeys converts an xgbutil key sequence such as "Control-Mod4-Escape"
// into executor key names ("ctrl", "super", "escape"). Lock modifiers are
// dropped; it returns nil for an empty sequence.
func ChordKeys(sequence string) []string {
	if strings.TrimSpace(sequence) == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(sequence, "-") {
		switch p := strings.ToLower(strings.TrimSpace(part)); p {
		case "":
		case "shift":
			keys = append(keys, "shift")
		case "control", "ctrl":
			keys = append(keys, "ctrl")
		case "mod1", "alt":
			keys = append(keys, "alt")
		case "mod4", "super":
			keys = append(keys, "super")
		case "lock", "mod2", "mod3", "mod5", "any":
		case "prior", "page_up":
			keys = append(keys, "pageup")
		case "next", "page_down":
			keys = append(keys, "pagedown")
		default:
			keys = append(keys, p)
		}
	}
	return keys
}
