package tui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/xseat/internal/config"
)

func TestFormValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	v := newFormValues(cfg)
	if v.attachSettle != "500ms" || v.maxWidth != "0" || v.picker != "terminal" {
		t.Fatalf("values = %+v", v)
	}

	edited := *cfg
	if err := v.apply(&edited); err != nil {
		t.Fatalf("apply unchanged values: %v", err)
	}
	if edited != *cfg {
		t.Fatalf("unchanged form altered config:\n%+v\n%+v", edited, *cfg)
	}
}

func TestFormValuesApply(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*formValues)
		check   func(*config.Config) bool
		wantErr bool
	}{
		{
			name:   "settle delay",
			mutate: func(v *formValues) { v.attachSettle = " 750ms " },
			check:  func(c *config.Config) bool { return c.Seat.AttachSettleDelay == 750*time.Millisecond },
		},
		{
			name:   "screenshot limits",
			mutate: func(v *formValues) { v.maxWidth, v.maxHeight, v.grid = "1280", "", "100" },
			check: func(c *config.Config) bool {
				return c.Screenshot.MaxWidth == 1280 && c.Screenshot.MaxHeight == 0 && c.Screenshot.Grid == 100
			},
		},
		{
			name:   "toggles",
			mutate: func(v *formValues) { v.alwaysOnTop, v.actionLog, v.picker = false, true, "rofi" },
			check: func(c *config.Config) bool {
				return !c.Window.AlwaysOnTop && c.Logging.ActionLog.Enabled && c.Picker == "rofi"
			},
		},
		{name: "bad duration", mutate: func(v *formValues) { v.attachSettle = "soon" }, wantErr: true},
		{name: "negative width", mutate: func(v *formValues) { v.maxWidth = "-1" }, wantErr: true},
		{name: "blank label", mutate: func(v *formValues) { v.label = "  " }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			v := newFormValues(cfg)
			tt.mutate(v)
			err := v.apply(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !tt.check(cfg) {
				t.Fatalf("config not updated: %+v", cfg)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	if err := validateDuration("100ms"); err != nil {
		t.Errorf("100ms: %v", err)
	}
	if err := validateDuration("-1s"); err == nil {
		t.Error("negative duration accepted")
	}
	if err := validateNonNegative("abc"); err == nil {
		t.Error("non-number accepted")
	}
	if err := validateNonNegative(""); err != nil {
		t.Errorf("empty: %v", err)
	}
}

func TestConfigChanges(t *testing.T) {
	a := config.DefaultConfig()
	changes, err := configChanges(a, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Fatalf("identical configs produced changes: %+v", changes)
	}

	b := config.DefaultConfig()
	b.Seat.Label = "agent"
	b.Picker = "tui"
	b.Screenshot.Quality = 80
	changes, err = configChanges(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := []settingChange{
		{Path: "picker", Old: "terminal", New: "tui"},
		{Path: "seat.label", Old: "CoX", New: "agent"},
		{Path: "screenshot.quality", Old: "", New: "80"},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %+v, want %+v", changes, want)
	}

	// A key that disappears is listed after the ones still present.
	changes, err = configChanges(b, a)
	if err != nil {
		t.Fatal(err)
	}
	last := changes[len(changes)-1]
	if last != (settingChange{Path: "screenshot.quality", Old: "80"}) {
		t.Errorf("last change = %+v", last)
	}
}

func TestRenderChanges(t *testing.T) {
	out := renderChanges([]settingChange{
		{Path: "seat.label", Old: "CoX", New: "agent"},
		{Path: "screenshot.quality", New: "80"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for i, want := range [][]string{{"seat.label", "CoX", "->", "agent"}, {"screenshot.quality", "(unset)", "80"}} {
		for _, w := range want {
			if !strings.Contains(lines[i], w) {
				t.Errorf("line %d %q missing %q", i, lines[i], w)
			}
		}
	}
}
