package computer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/xseat/internal/actionlog"
	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/input"
	"github.com/1broseidon/xseat/internal/platform"
)

// ErrUnsupportedAction is returned for action types with no mapping.
var ErrUnsupportedAction = errors.New("unsupported action")

const (
	DefaultScrollLimit = 5
	DefaultWaitMs      = 1000
	ToolType           = "computer-preview"
)

// Computer is the action surface of a session.
type Computer interface {
	MoveTo(x, y int) error
	Click(x, y int, button string) error
	DoubleClick() error
	Drag(path []input.Point) error
	Scroll(x, y, scrollX, scrollY int) error
	Keypress(keys []string) error
	Type(text string) error
	Wait(ms int) error
	Screenshot() (*capture.Shot, error)
	Size() platform.Size
	Window() platform.WindowID
}

// Options configures a Dispatcher.
type Options struct {
	// ScrollLimit clamps scroll deltas to [-ScrollLimit, ScrollLimit].
	ScrollLimit int
	// Messages receives the text of message items; nil discards it.
	Messages  io.Writer
	ActionLog *actionlog.Logger
	Logger    *slog.Logger
}

// Dispatcher executes actions against a Computer.
type Dispatcher struct {
	computer Computer
	opts     Options
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(c Computer, opts Options) *Dispatcher {
	if opts.ScrollLimit <= 0 {
		opts.ScrollLimit = DefaultScrollLimit
	}
	if opts.Messages == nil {
		opts.Messages = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{computer: c, opts: opts, logger: logger}
}

// ToolSpec returns the tool description advertised to the model.
func (d *Dispatcher) ToolSpec() ToolSpec {
	size := d.computer.Size()
	return ToolSpec{
		Type:          ToolType,
		DisplayWidth:  size.Width,
		DisplayHeight: size.Height,
		Environment:   "linux",
	}
}

// Window returns the session's target window, zero in full-desktop mode.
func (d *Dispatcher) Window() platform.WindowID {
	return d.computer.Window()
}

// Dispatch runs one action.
func (d *Dispatcher) Dispatch(a Action) error {
	err := d.dispatch(a)
	if err != nil {
		d.opts.ActionLog.Log(actionlog.ActionError, uint32(d.computer.Window()), map[string]any{
			"action": a.Type,
			"error":  err.Error(),
		})
	}
	return err
}

func (d *Dispatcher) dispatch(a Action) error {
	window := uint32(d.computer.Window())
	log := d.opts.ActionLog

	switch a.Type {
	case ActionMove:
		x, y, err := point(a)
		if err != nil {
			return err
		}
		log.Log(actionlog.ActionMove, window, map[string]any{"x": x, "y": y})
		return d.computer.MoveTo(x, y)

	case ActionClick:
		x, y, err := point(a)
		if err != nil {
			return err
		}
		button := a.Button
		if button == "" {
			button = "left"
		}
		log.Log(actionlog.ActionClick, window, map[string]any{"x": x, "y": y, "button": button})
		return d.computer.Click(x, y, button)

	case ActionDoubleClick:
		details := map[string]any{}
		if a.X != nil && a.Y != nil {
			details["x"], details["y"] = *a.X, *a.Y
			if err := d.computer.MoveTo(*a.X, *a.Y); err != nil {
				return err
			}
		}
		log.Log(actionlog.ActionDoubleClick, window, details)
		return d.computer.DoubleClick()

	case ActionDrag:
		log.Log(actionlog.ActionDrag, window, map[string]any{"points": len(a.Path)})
		return d.computer.Drag(a.Path)

	case ActionScroll:
		x, y, err := point(a)
		if err != nil {
			return err
		}
		sx := clamp(a.ScrollX, d.opts.ScrollLimit)
		sy := clamp(a.ScrollY, d.opts.ScrollLimit)
		log.Log(actionlog.ActionScroll, window, map[string]any{"x": x, "y": y, "scroll_x": sx, "scroll_y": sy})
		return d.computer.Scroll(x, y, sx, sy)

	case ActionType:
		log.Log(actionlog.ActionType, window, map[string]any{"text": log.Text(a.Text)})
		return d.computer.Type(a.Text)

	case ActionKeypress:
		log.Log(actionlog.ActionKeypress, window, map[string]any{"keys": fmt.Sprint(a.Keys)})
		return d.computer.Keypress(a.Keys)

	case ActionWait:
		ms := DefaultWaitMs
		if a.Ms != nil {
			ms = *a.Ms
		}
		log.Log(actionlog.ActionWait, window, map[string]any{"ms": ms})
		return d.computer.Wait(ms)

	case ActionScreenshot:
		// Every call is answered with a screenshot; nothing else to do.
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAction, a.Type)
	}
}

func point(a Action) (int, int, error) {
	if a.X == nil || a.Y == nil {
		return 0, 0, platform.ActionErr(a.Type, fmt.Errorf("x and y are required"))
	}
	return *a.X, *a.Y, nil
}

func clamp(v, limit int) int {
	return max(-limit, min(v, limit))
}

// Screenshot captures the session and logs it.
func (d *Dispatcher) Screenshot() (*capture.Shot, error) {
	shot, err := d.computer.Screenshot()
	if err != nil {
		return nil, err
	}
	d.opts.ActionLog.Log(actionlog.ActionScreenshot, uint32(d.computer.Window()), map[string]any{
		"width":  shot.Width,
		"height": shot.Height,
		"bytes":  len(shot.Data),
	})
	return shot, nil
}

// Handle processes one response item. Message text is written to the
// Messages writer. A computer_call is executed and answered with a call
// output carrying a fresh screenshot; pending safety checks are echoed back
// as acknowledged. Other items produce no output.
func (d *Dispatcher) Handle(item Item) ([]CallOutput, error) {
	switch item.Type {
	case ItemMessage:
		for _, c := range item.Content {
			if c.Text != "" {
				fmt.Fprintln(d.opts.Messages, c.Text)
			}
		}
		return nil, nil

	case ItemComputerCall:
		if item.Action == nil {
			return nil, platform.ActionErr("computer_call", fmt.Errorf("call %s has no action", item.CallID))
		}
		for _, check := range item.PendingSafetyChecks {
			d.logger.Warn("safety check", "call_id", item.CallID, "code", check.Code, "message", check.Message)
		}
		if err := d.Dispatch(*item.Action); err != nil {
			return nil, err
		}
		shot, err := d.Screenshot()
		if err != nil {
			return nil, err
		}
		acknowledged := item.PendingSafetyChecks
		if acknowledged == nil {
			acknowledged = []SafetyCheck{}
		}
		return []CallOutput{{
			Type:                     ItemComputerCallOutput,
			CallID:                   item.CallID,
			AcknowledgedSafetyChecks: acknowledged,
			Output: ImageOutput{
				Type:     OutputInputImage,
				ImageURL: shot.DataURL(),
			},
		}}, nil

	default:
		return nil, nil
	}
}
