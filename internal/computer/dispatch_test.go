package computer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/input"
	"github.com/1broseidon/xseat/internal/platform"
)

type fakeComputer struct {
	calls []string
	err   error
}

func (f *fakeComputer) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeComputer) MoveTo(x, y int) error { return f.record("move %d %d", x, y) }
func (f *fakeComputer) Click(x, y int, button string) error {
	return f.record("click %d %d %s", x, y, button)
}
func (f *fakeComputer) DoubleClick() error            { return f.record("double_click") }
func (f *fakeComputer) Drag(path []input.Point) error { return f.record("drag %v", path) }
func (f *fakeComputer) Keypress(keys []string) error  { return f.record("keypress %v", keys) }
func (f *fakeComputer) Type(text string) error        { return f.record("type %q", text) }
func (f *fakeComputer) Wait(ms int) error             { return f.record("wait %d", ms) }
func (f *fakeComputer) Size() platform.Size           { return platform.Size{Width: 800, Height: 600} }
func (f *fakeComputer) Window() platform.WindowID     { return 0x1a00003 }
func (f *fakeComputer) Scroll(x, y, sx, sy int) error {
	return f.record("scroll %d %d %d %d", x, y, sx, sy)
}
func (f *fakeComputer) Screenshot() (*capture.Shot, error) {
	f.calls = append(f.calls, "screenshot")
	return &capture.Shot{Data: []byte("png"), MIMEType: "image/png", Width: 800, Height: 600, Scale: 1}, nil
}

func intp(v int) *int { return &v }

func TestDispatch(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   []string
	}{
		{"move", Action{Type: "move", X: intp(10), Y: intp(20)}, []string{"move 10 20"}},
		{"click default button", Action{Type: "click", X: intp(1), Y: intp(2)}, []string{"click 1 2 left"}},
		{"click right", Action{Type: "click", X: intp(1), Y: intp(2), Button: "right"}, []string{"click 1 2 right"}},
		{"double click in place", Action{Type: "double_click"}, []string{"double_click"}},
		{"double click at point", Action{Type: "double_click", X: intp(3), Y: intp(4)}, []string{"move 3 4", "double_click"}},
		{"scroll clamped", Action{Type: "scroll", X: intp(5), Y: intp(6), ScrollX: -9, ScrollY: 12}, []string{"scroll 5 6 -5 5"}},
		{"scroll in range", Action{Type: "scroll", X: intp(5), Y: intp(6), ScrollY: -3}, []string{"scroll 5 6 0 -3"}},
		{"type", Action{Type: "type", Text: "Hi."}, []string{`type "Hi."`}},
		{"keypress", Action{Type: "keypress", Keys: []string{"ctrl", "c"}}, []string{"keypress [ctrl c]"}},
		{"wait default", Action{Type: "wait"}, []string{"wait 1000"}},
		{"wait explicit", Action{Type: "wait", Ms: intp(250)}, []string{"wait 250"}},
		{"drag", Action{Type: "drag", Path: []input.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}, []string{"drag [{1 1} {2 2}]"}},
		{"screenshot is a no-op", Action{Type: "screenshot"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeComputer{}
			d := NewDispatcher(c, Options{})
			if err := d.Dispatch(tt.action); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c.calls, tt.want) {
				t.Errorf("calls = %v, want %v", c.calls, tt.want)
			}
		})
	}
}

func TestDispatchUnsupported(t *testing.T) {
	d := NewDispatcher(&fakeComputer{}, Options{})
	err := d.Dispatch(Action{Type: "teleport"})
	if !errors.Is(err, ErrUnsupportedAction) {
		t.Fatalf("error = %v, want ErrUnsupportedAction", err)
	}
	if !strings.Contains(err.Error(), "teleport") {
		t.Errorf("error %q does not name the action", err)
	}
}

func TestDispatchRequiresCoordinates(t *testing.T) {
	d := NewDispatcher(&fakeComputer{}, Options{})
	for _, typ := range []string{"move", "click", "scroll"} {
		if err := d.Dispatch(Action{Type: typ, X: intp(1)}); !platform.IsKind(err, platform.KindAction) {
			t.Errorf("%s without y: error = %v, want action error", typ, err)
		}
	}
}

func TestDispatchCustomScrollLimit(t *testing.T) {
	c := &fakeComputer{}
	d := NewDispatcher(c, Options{ScrollLimit: 2})
	if err := d.Dispatch(Action{Type: "scroll", X: intp(0), Y: intp(0), ScrollY: -7}); err != nil {
		t.Fatal(err)
	}
	if c.calls[0] != "scroll 0 0 0 -2" {
		t.Errorf("call = %q", c.calls[0])
	}
}

func TestHandleComputerCall(t *testing.T) {
	raw := `{
		"type": "computer_call",
		"call_id": "call_1",
		"action": {"type": "click", "x": 10, "y": 20, "button": "left"},
		"pending_safety_checks": [{"id": "sc_1", "code": "malicious_instructions", "message": "careful"}]
	}`
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatal(err)
	}

	c := &fakeComputer{}
	d := NewDispatcher(c, Options{})
	outputs, err := d.Handle(item)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.calls, []string{"click 10 20 left", "screenshot"}) {
		t.Errorf("calls = %v", c.calls)
	}
	if len(outputs) != 1 {
		t.Fatalf("len(outputs) = %d", len(outputs))
	}
	out := outputs[0]
	if out.Type != "computer_call_output" || out.CallID != "call_1" {
		t.Errorf("output = %+v", out)
	}
	if len(out.AcknowledgedSafetyChecks) != 1 || out.AcknowledgedSafetyChecks[0].ID != "sc_1" {
		t.Errorf("acknowledged = %+v", out.AcknowledgedSafetyChecks)
	}
	if out.Output.Type != "input_image" || out.Output.ImageURL != "data:image/png;base64,cG5n" {
		t.Errorf("image output = %+v", out.Output)
	}
}

func TestHandleCallOutputJSON(t *testing.T) {
	d := NewDispatcher(&fakeComputer{}, Options{})
	outputs, err := d.Handle(Item{Type: "computer_call", CallID: "c", Action: &Action{Type: "screenshot"}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"acknowledged_safety_checks":[]`) {
		t.Errorf("empty checks should marshal as []: %s", data)
	}
}

func TestHandleMessageAndOtherItems(t *testing.T) {
	var buf bytes.Buffer
	c := &fakeComputer{}
	d := NewDispatcher(c, Options{Messages: &buf})

	outputs, err := d.Handle(Item{Type: "message", Role: "assistant", Content: []Content{{Type: "output_text", Text: "Done."}}})
	if err != nil || outputs != nil {
		t.Fatalf("Handle(message) = %v, %v", outputs, err)
	}
	if buf.String() != "Done.\n" {
		t.Errorf("message output = %q", buf.String())
	}

	outputs, err = d.Handle(Item{Type: "reasoning"})
	if err != nil || outputs != nil || len(c.calls) != 0 {
		t.Errorf("Handle(reasoning) = %v, %v, calls %v", outputs, err, c.calls)
	}
}

func TestHandleActionFailureSkipsScreenshot(t *testing.T) {
	c := &fakeComputer{err: errors.New("boom")}
	d := NewDispatcher(c, Options{})
	_, err := d.Handle(Item{Type: "computer_call", CallID: "c", Action: &Action{Type: "type", Text: "x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, call := range c.calls {
		if call == "screenshot" {
			t.Error("screenshot taken after failed action")
		}
	}
}

func TestToolSpec(t *testing.T) {
	d := NewDispatcher(&fakeComputer{}, Options{})
	want := ToolSpec{Type: "computer-preview", DisplayWidth: 800, DisplayHeight: 600, Environment: "linux"}
	if got := d.ToolSpec(); got != want {
		t.Errorf("ToolSpec() = %+v, want %+v", got, want)
	}
}
