package platform

import "image"

// WindowID is a platform-neutral window identifier. Zero means "no window"
// (full-desktop mode).
type WindowID uint32

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Extents are window decoration insets.
type Extents struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID `json:"id"`
	Name   string   `json:"name"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// Bounds returns the window geometry as a Rect.
func (w Window) Bounds() Rect {
	return Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// InputDevice is one entry of the input device listing.
type InputDevice struct {
	ID     int
	Name   string // label field, trimmed of tree decorations
	Line   string // the raw listing line
	Role   string // e.g. "master pointer", "slave keyboard", "floating slave"
	Master int    // attached master id, 0 when floating or a master itself
}

// AbsAxis declares an absolute axis range.
type AbsAxis struct {
	Code uint16
	Min  int32
	Max  int32
}

// Capabilities is the event set a virtual device declares at creation.
type Capabilities struct {
	Keys []uint16 // EV_KEY codes (keys and buttons)
	Rel  []uint16 // EV_REL codes
	Abs  []AbsAxis
}

// AbsMax returns the declared maximum for an absolute axis.
func (c Capabilities) AbsMax(code uint16) (int32, bool) {
	for _, a := range c.Abs {
		if a.Code == code {
			return a.Max, true
		}
	}
	return 0, false
}

// VirtualDevice is a kernel-level synthetic input device.
type VirtualDevice interface {
	Name() string
	Capabilities() Capabilities
	Emit(evType, code uint16, value int32) error
	Sync() error
	Close() error
}

// Backend abstracts the windowing system and input subsystem so that the
// executor and session logic stay portable. Only implementations are
// platform-bound.
type Backend interface {
	Resolution() (Size, error)
	WindowGeometry(id WindowID) (Rect, error)
	FrameExtents(id WindowID) Extents
	ListWindows() ([]Window, error)
	ActivateWindow(id WindowID) error

	CreateDevice(name string, caps Capabilities) (VirtualDevice, error)
	ListInputDevices() ([]InputDevice, error)

	CreateSeat(label string) error
	AttachDevice(deviceID, masterID int) error
	RemoveSeat(masterID int) error

	WindowAbove(id WindowID) (bool, error)
	SetWindowAbove(id WindowID, above bool) error

	Capture() (*image.RGBA, error)
	Close()
}
