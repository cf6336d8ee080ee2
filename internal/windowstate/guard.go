// Package windowstate keeps the target window always-on-top for the length
// of a session and restores the user's original setting afterwards.
package windowstate

import (
	"sync"

	"github.com/1broseidon/xseat/internal/platform"
)

// State is the guard's lifecycle position.
type State int

const (
	Unmodified State = iota
	Forced
	Restored
)

func (s State) String() string {
	switch s {
	case Unmodified:
		return "unmodified"
	case Forced:
		return "forced"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

// Stacker reads and writes a window's always-on-top flag.
type Stacker interface {
	WindowAbove(id platform.WindowID) (bool, error)
	SetWindowAbove(id platform.WindowID, above bool) error
}

// Guard forces always-on-top on Enter and undoes it on Exit, unless the
// window was already always-on-top before Enter.
type Guard struct {
	mu       sync.Mutex
	stacker  Stacker
	window   platform.WindowID
	state    State
	wasAbove bool
}

// NewGuard creates a guard for one window. One guard serves one session.
func NewGuard(stacker Stacker, window platform.WindowID) *Guard {
	return &Guard{stacker: stacker, window: window}
}

// State returns the current lifecycle state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// WasAbove reports the flag value saved by Enter.
func (g *Guard) WasAbove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wasAbove
}

// Enter saves the current flag and forces it on. Only the first call has
// any effect.
func (g *Guard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Unmodified {
		return nil
	}

	above, err := g.stacker.WindowAbove(g.window)
	if err != nil {
		return platform.WindowStateErr("read always-on-top", err)
	}
	if err := g.stacker.SetWindowAbove(g.window, true); err != nil {
		return platform.WindowStateErr("set always-on-top", err)
	}
	g.wasAbove = above
	g.state = Forced
	return nil
}

// Exit clears the flag if Enter turned it on. Only the first call after a
// successful Enter has any effect; the guard is Restored even when the
// request fails.
func (g *Guard) Exit() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Forced {
		return nil
	}
	g.state = Restored
	if g.wasAbove {
		return nil
	}
	if err := g.stacker.SetWindowAbove(g.window, false); err != nil {
		return platform.WindowStateErr("clear always-on-top", err)
	}
	return nil
}
