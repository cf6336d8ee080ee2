package mcp

import "github.com/1broseidon/xseat/internal/input"

// PointInput addresses a pixel of the screenshot the model was last shown.
type PointInput struct {
	X int `json:"x" jsonschema:"Horizontal pixel coordinate in the last screenshot"`
	Y int `json:"y" jsonschema:"Vertical pixel coordinate in the last screenshot"`
}

// ScreenshotInput is the input for the screenshot tool.
type ScreenshotInput struct{}

// MoveInput is the input for the move tool.
type MoveInput = PointInput

// ClickInput is the input for the click tool.
type ClickInput struct {
	X      int    `json:"x" jsonschema:"Horizontal pixel coordinate in the last screenshot"`
	Y      int    `json:"y" jsonschema:"Vertical pixel coordinate in the last screenshot"`
	Button string `json:"button,omitempty" jsonschema:"Mouse button: left, right or middle (default: left)"`
}

// DoubleClickInput is the input for the double_click tool.
type DoubleClickInput struct {
	X *int `json:"x,omitempty" jsonschema:"Optional horizontal coordinate to move to first"`
	Y *int `json:"y,omitempty" jsonschema:"Optional vertical coordinate to move to first"`
}

// DragInput is the input for the drag tool.
type DragInput struct {
	Path []input.Point `json:"path" jsonschema:"Points to drag through; the left button is held from the first point to the last"`
}

// ScrollInput is the input for the scroll tool.
type ScrollInput struct {
	X       int `json:"x" jsonschema:"Horizontal pixel coordinate to scroll at"`
	Y       int `json:"y" jsonschema:"Vertical pixel coordinate to scroll at"`
	ScrollX int `json:"scroll_x,omitempty" jsonschema:"Horizontal scroll steps; positive scrolls right"`
	ScrollY int `json:"scroll_y,omitempty" jsonschema:"Vertical scroll steps; positive scrolls down"`
}

// TypeInput is the input for the type tool.
type TypeInput struct {
	Text string `json:"text" jsonschema:"Text to type; characters without a key mapping are skipped"`
}

// KeypressInput is the input for the keypress tool.
type KeypressInput struct {
	Keys []string `json:"keys" jsonschema:"Key names pressed together as a chord, e.g. [\"ctrl\", \"c\"]"`
}

// WaitInput is the input for the wait tool.
type WaitInput struct {
	Ms *int `json:"ms,omitempty" jsonschema:"Milliseconds to wait (default: 1000)"`
}

// DisplayInput is the input for the display tool.
type DisplayInput struct{}

// DisplayOutput describes the coordinate space tools accept.
type DisplayOutput struct {
	Width       int    `json:"display_width"`
	Height      int    `json:"display_height"`
	Window      string `json:"window"`
	Environment string `json:"environment"`
}
