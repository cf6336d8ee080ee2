package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// _NET_WM_STATE actions.
const (
	wmStateRemove = 0
	wmStateAdd    = 1
)

// Source indications for EWMH client messages.
const (
	sourceApplication = 1
	sourcePager       = 2
)

const (
	atomWmState      = "_NET_WM_STATE"
	atomWmStateAbove = "_NET_WM_STATE_ABOVE"
)

// HasWmState reports whether the window's _NET_WM_STATE list contains state.
// A window without the property has no states.
func (c *Connection) HasWmState(windowID xproto.Window, state string) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		// xgbutil reports a missing property as an error; distinguish it from
		// a dead window by asking for the geometry.
		if _, gerr := xproto.GetGeometry(c.Conn(), xproto.Drawable(windowID)).Reply(); gerr != nil {
			return false, fmt.Errorf("failed to read %s of window %#x: %w", atomWmState, windowID, gerr)
		}
		return false, nil
	}
	for _, s := range states {
		if s == state {
			return true, nil
		}
	}
	return false, nil
}

// IsAbove reports whether the window carries _NET_WM_STATE_ABOVE.
func (c *Connection) IsAbove(windowID xproto.Window) (bool, error) {
	return c.HasWmState(windowID, atomWmStateAbove)
}

// SetAbove asks the window manager to add or remove _NET_WM_STATE_ABOVE.
// The message is built by hand; the xgbutil ewmh request helpers panic on
// this library version.
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	stateAtom, err := c.internAtom(atomWmState)
	if err != nil {
		return err
	}
	aboveAtom, err := c.internAtom(atomWmStateAbove)
	if err != nil {
		return err
	}

	action := uint32(wmStateRemove)
	if above {
		action = wmStateAdd
	}
	return c.sendRootMessage(windowID, stateAtom,
		[]uint32{action, uint32(aboveAtom), 0, sourceApplication, 0})
}

// ActivateWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	atom, err := c.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}
	return c.sendRootMessage(windowID, atom, []uint32{sourcePager, 0, 0, 0, 0})
}

// sendRootMessage sends a 32-bit client message about windowID to the root
// window, where the window manager listens for EWMH requests.
func (c *Connection) sendRootMessage(windowID xproto.Window, msgType xproto.Atom, data []uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	err := xproto.SendEventChecked(
		c.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
	if err != nil {
		return fmt.Errorf("failed to send client message to root: %w", err)
	}
	c.XUtil.Sync()
	return nil
}
