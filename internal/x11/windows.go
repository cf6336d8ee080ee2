package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Geometry is an absolute window rectangle.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// WindowInfo describes a top-level managed window.
type WindowInfo struct {
	ID       xproto.Window
	Name     string
	Geometry Geometry
}

// ScreenSize returns the size of the root window in pixels.
func (c *Connection) ScreenSize() (width, height int, err error) {
	geom, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query root geometry: %w", err)
	}
	if geom.Width == 0 || geom.Height == 0 {
		return 0, 0, fmt.Errorf("root window reports empty size %dx%d", geom.Width, geom.Height)
	}
	return int(geom.Width), int(geom.Height), nil
}

// WindowGeometry returns the absolute position and size of a window. Window
// managers reparent clients into decoration frames, so the position is the
// sum of the window's offset and every ancestor's offset up to the root.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry of window %#x: %w", windowID, err)
	}

	x, y := int(geom.X), int(geom.Y)
	current := windowID
	for {
		tree, err := xproto.QueryTree(c.Conn(), current).Reply()
		if err != nil {
			return Geometry{}, fmt.Errorf("failed to query tree of window %#x: %w", current, err)
		}
		if tree.Parent == 0 || tree.Parent == c.Root {
			break
		}
		pg, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(tree.Parent)).Reply()
		if err != nil {
			return Geometry{}, fmt.Errorf("failed to get geometry of ancestor %#x: %w", tree.Parent, err)
		}
		x += int(pg.X)
		y += int(pg.Y)
		current = tree.Parent
	}

	return Geometry{
		X:      x,
		Y:      y,
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// VisibleWindows lists managed top-level windows that have a name and are not
// hidden. Windows that disappear mid-scan are skipped.
func (c *Connection) VisibleWindows() ([]WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	windows := make([]WindowInfo, 0, len(clients))
	for _, windowID := range clients {
		if c.isHidden(windowID) {
			continue
		}
		name := c.WindowName(windowID)
		if name == "" {
			continue
		}
		geom, err := c.WindowGeometry(windowID)
		if err != nil {
			continue
		}
		windows = append(windows, WindowInfo{
			ID:       windowID,
			Name:     name,
			Geometry: geom,
		})
	}
	return windows, nil
}

// WindowName returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowName(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}

func (c *Connection) isHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}
