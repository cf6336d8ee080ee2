package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/xseat/internal/input"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Delays() != input.DefaultDelays() {
		t.Errorf("default delays = %+v, want %+v", cfg.Delays(), input.DefaultDelays())
	}
	if cfg.Seat.AttachSettleDelay != 500*time.Millisecond {
		t.Errorf("attach settle = %v", cfg.Seat.AttachSettleDelay)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Errorf("File = %q, want empty", res.File)
	}
	if res.Config.Devices.PointerName != "CoX Mouse Device" {
		t.Errorf("pointer name = %q", res.Config.Devices.PointerName)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Seat.Label != "CoX" {
		t.Errorf("seat label = %q", res.Config.Seat.Label)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"display: \":1\"",
		"seat:",
		"  label: agent",
		"  attach_settle_delay: 750ms",
		"input:",
		"  scroll_limit: 3",
		"  keystroke_delay: 20ms",
		"screenshot:",
		"  max_width: 1280",
		"logging:",
		"  level: debug",
		"  action_log:",
		"    enabled: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.Seat.Label != "agent" {
		t.Errorf("display/label = %q/%q", cfg.Display, cfg.Seat.Label)
	}
	if cfg.Seat.AttachSettleDelay != 750*time.Millisecond {
		t.Errorf("attach_settle_delay = %v", cfg.Seat.AttachSettleDelay)
	}
	if cfg.Seat.TeardownSettleDelay != 100*time.Millisecond {
		t.Errorf("teardown_settle_delay lost its default: %v", cfg.Seat.TeardownSettleDelay)
	}
	if cfg.Input.ScrollLimit != 3 || cfg.Delays().Keystroke != 20*time.Millisecond || cfg.Delays().Click != 100*time.Millisecond {
		t.Errorf("input = %+v", cfg.Input)
	}
	if cfg.CaptureOptions().MaxWidth != 1280 {
		t.Errorf("max_width = %d", cfg.CaptureOptions().MaxWidth)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("slog level = %v", cfg.SlogLevel())
	}
	if !cfg.GetActionLogConfig().Enabled {
		t.Error("action log should be enabled")
	}
	if res.File != path {
		t.Errorf("File = %q, want %q", res.File, path)
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "seat:\n  lable: typo\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "picker: zenity\n")
	_, err := LoadFromPath(path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "picker" {
		t.Errorf("Path = %q, want picker", verr.Path)
	}
	if verr.Source.Line != 1 || !strings.HasPrefix(err.Error(), path+":1:") {
		t.Errorf("error = %q, want file position", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"blank seat label", func(c *Config) { c.Seat.Label = " " }, "seat.label"},
		{"negative settle", func(c *Config) { c.Seat.AttachSettleDelay = -time.Second }, "seat.attach_settle_delay"},
		{"empty pointer name", func(c *Config) { c.Devices.PointerName = "" }, "devices.pointer_name"},
		{"long keyboard name", func(c *Config) { c.Devices.KeyboardName = strings.Repeat("k", 80) }, "devices.keyboard_name"},
		{"same device names", func(c *Config) { c.Devices.KeyboardName = c.Devices.PointerName }, "devices.keyboard_name"},
		{"zero discovery timeout", func(c *Config) { c.Devices.DiscoveryTimeout = 0 }, "devices.discovery_timeout"},
		{"negative key hold", func(c *Config) { c.Input.KeyHold = -1 }, "input.key_hold"},
		{"zero scroll limit", func(c *Config) { c.Input.ScrollLimit = 0 }, "input.scroll_limit"},
		{"bad format", func(c *Config) { c.Screenshot.Format = "bmp" }, "screenshot.format"},
		{"bad quality", func(c *Config) { c.Screenshot.Quality = 101 }, "screenshot.quality"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad picker", func(c *Config) { c.Picker = "zenity" }, "picker"},
		{"padded stop hotkey", func(c *Config) { c.StopHotkey = " Mod4-Escape" }, "stop_hotkey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Errorf("Path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.yaml" {
		t.Errorf("path = %q", path)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := DefaultConfig().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "attach_settle_delay: 500ms") {
		t.Errorf("durations should render as strings:\n%s", data)
	}
	res, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("reload printed config: %v", err)
	}
	if res.Config.Seat.AttachSettleDelay != 500*time.Millisecond {
		t.Errorf("attach_settle_delay = %v", res.Config.Seat.AttachSettleDelay)
	}
}

func TestGetActionLogConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	lc := cfg.GetActionLogConfig()
	if lc.MaxSizeMB != 10 || lc.MaxFiles != 3 || lc.PreviewLength != 50 {
		t.Errorf("defaults = %+v", lc)
	}
	if !strings.HasSuffix(lc.FilePath, filepath.Join("xseat", "actions.log")) {
		t.Errorf("FilePath = %q", lc.FilePath)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Seat.Label = "agent"
	if err := cfg.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Seat.Label != "agent" {
		t.Errorf("label = %q", res.Config.Seat.Label)
	}

	cfg.Seat.Label = ""
	if err := cfg.WriteFile(path); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}
