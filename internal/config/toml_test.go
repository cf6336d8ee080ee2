package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `picker = "rofi"
stop_hotkey = ""

[seat]
attach_settle_delay = "750ms"

[screenshot]
max_width = 1024
format = "jpeg"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := res.Config
	if cfg.Picker != "rofi" || cfg.StopHotkey != "" {
		t.Errorf("picker/stop_hotkey = %q/%q", cfg.Picker, cfg.StopHotkey)
	}
	if cfg.Seat.AttachSettleDelay != 750*time.Millisecond {
		t.Errorf("attach_settle_delay = %v", cfg.Seat.AttachSettleDelay)
	}
	if cfg.Screenshot.MaxWidth != 1024 || cfg.Screenshot.Format != "jpeg" {
		t.Errorf("screenshot = %+v", cfg.Screenshot)
	}
	if cfg.Seat.Label != "CoX" || cfg.Input.ScrollLimit != 5 {
		t.Errorf("defaults lost: label %q scroll_limit %d", cfg.Seat.Label, cfg.Input.ScrollLimit)
	}
}

func TestLoadTOMLRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[seat]\nlabl = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "seat.labl") {
		t.Fatalf("err = %v, want unknown seat.labl", err)
	}
}

func TestWriteFileTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Seat.Label = "agent"
	cfg.Input.KeystrokeDelay = 15 * time.Millisecond
	cfg.Logging.ActionLog.Enabled = true
	if err := cfg.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Config, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", res.Config, cfg)
	}
}
