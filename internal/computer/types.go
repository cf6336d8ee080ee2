// Package computer maps computer-use actions emitted by a model onto a
// session and builds the call outputs sent back.
package computer

import "github.com/1broseidon/xseat/internal/input"

// Action types.
const (
	ActionMove        = "move"
	ActionClick       = "click"
	ActionDoubleClick = "double_click"
	ActionDrag        = "drag"
	ActionScroll      = "scroll"
	ActionType        = "type"
	ActionKeypress    = "keypress"
	ActionWait        = "wait"
	ActionScreenshot  = "screenshot"
)

// Item types.
const (
	ItemMessage            = "message"
	ItemComputerCall       = "computer_call"
	ItemComputerCallOutput = "computer_call_output"
	OutputInputImage       = "input_image"
)

// Action is one computer-use action.
type Action struct {
	Type    string        `json:"type"`
	X       *int          `json:"x,omitempty"`
	Y       *int          `json:"y,omitempty"`
	Button  string        `json:"button,omitempty"`
	ScrollX int           `json:"scroll_x,omitempty"`
	ScrollY int           `json:"scroll_y,omitempty"`
	Text    string        `json:"text,omitempty"`
	Keys    []string      `json:"keys,omitempty"`
	Ms      *int          `json:"ms,omitempty"`
	Path    []input.Point `json:"path,omitempty"`
}

// SafetyCheck is a pending check raised by the model provider.
type SafetyCheck struct {
	ID      string `json:"id"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Content is one part of a message item.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Item is a response output item.
type Item struct {
	Type                string        `json:"type"`
	ID                  string        `json:"id,omitempty"`
	Role                string        `json:"role,omitempty"`
	Content             []Content     `json:"content,omitempty"`
	CallID              string        `json:"call_id,omitempty"`
	Action              *Action       `json:"action,omitempty"`
	PendingSafetyChecks []SafetyCheck `json:"pending_safety_checks,omitempty"`
}

// ImageOutput is the screenshot attached to a call output.
type ImageOutput struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

// CallOutput answers a computer_call with a fresh screenshot.
type CallOutput struct {
	Type                     string        `json:"type"`
	CallID                   string        `json:"call_id"`
	AcknowledgedSafetyChecks []SafetyCheck `json:"acknowledged_safety_checks"`
	Output                   ImageOutput   `json:"output"`
}

// ToolSpec describes the display to the model.
type ToolSpec struct {
	Type          string `json:"type"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
	Environment   string `json:"environment"`
}
