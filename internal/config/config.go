package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/xseat/internal/actionlog"
	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/input"
)

// SeatConfig configures the dedicated master pointer/keyboard pair.
type SeatConfig struct {
	// Label names the pair; the server derives "<label> pointer" and
	// "<label> keyboard" from it.
	Label string `yaml:"label" toml:"label"`
	// AttachSettleDelay is the pause after each device attach. Attaching
	// faster produces unreliable event delivery.
	AttachSettleDelay time.Duration `yaml:"attach_settle_delay" toml:"attach_settle_delay"`
	// TeardownSettleDelay is the pause between closing the devices and
	// removing the seat.
	TeardownSettleDelay time.Duration `yaml:"teardown_settle_delay" toml:"teardown_settle_delay"`
	// ReclaimStale removes a leftover seat with the same label at startup.
	ReclaimStale bool `yaml:"reclaim_stale" toml:"reclaim_stale"`
}

// DevicesConfig configures the virtual devices.
type DevicesConfig struct {
	PointerName      string        `yaml:"pointer_name" toml:"pointer_name"`
	KeyboardName     string        `yaml:"keyboard_name" toml:"keyboard_name"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" toml:"discovery_timeout"`
	UinputPath       string        `yaml:"uinput_path,omitempty" toml:"uinput_path,omitempty"`
}

// InputConfig configures action pacing.
type InputConfig struct {
	ClickDelay     time.Duration `yaml:"click_delay" toml:"click_delay"`
	DoubleClickGap time.Duration `yaml:"double_click_gap" toml:"double_click_gap"`
	KeyHold        time.Duration `yaml:"key_hold" toml:"key_hold"`
	KeyReleaseGap  time.Duration `yaml:"key_release_gap" toml:"key_release_gap"`
	KeystrokeDelay time.Duration `yaml:"keystroke_delay" toml:"keystroke_delay"`
	ScrollDelay    time.Duration `yaml:"scroll_delay" toml:"scroll_delay"`
	ScrollSettle   time.Duration `yaml:"scroll_settle" toml:"scroll_settle"`
	ScrollLimit    int           `yaml:"scroll_limit" toml:"scroll_limit"`
}

// WindowConfig configures how the target window is treated.
type WindowConfig struct {
	AlwaysOnTop  bool `yaml:"always_on_top" toml:"always_on_top"`
	FocusOnEnter bool `yaml:"focus_on_enter" toml:"focus_on_enter"`
}

// ScreenshotConfig configures screenshots sent to a model.
type ScreenshotConfig struct {
	MaxWidth  int    `yaml:"max_width" toml:"max_width"`
	MaxHeight int    `yaml:"max_height" toml:"max_height"`
	Format    string `yaml:"format" toml:"format"`
	Quality   int    `yaml:"quality,omitempty" toml:"quality,omitempty"`
	// Grid overlays labeled coordinates every Grid pixels; 0 disables.
	Grid int `yaml:"grid,omitempty" toml:"grid,omitempty"`
}

// ActionLogConfig configures the per-action log file.
type ActionLogConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// File is the log file path (default: ~/.local/share/xseat/actions.log)
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty" toml:"max_files,omitempty"`
	// IncludeContent logs typed text verbatim (default: false)
	IncludeContent bool `yaml:"include_content,omitempty" toml:"include_content,omitempty"`
	// PreviewLength caps logged text (default: 50)
	PreviewLength int `yaml:"preview_length,omitempty" toml:"preview_length,omitempty"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level     string          `yaml:"level" toml:"level"`
	ActionLog ActionLogConfig `yaml:"action_log" toml:"action_log"`
}

// Config holds the application configuration.
type Config struct {
	Display    string `yaml:"display,omitempty" toml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty" toml:"xauthority,omitempty"`
	Picker     string `yaml:"picker" toml:"picker"`
	// StopHotkey is a global key sequence that ends a running session;
	// empty disables it.
	StopHotkey string `yaml:"stop_hotkey" toml:"stop_hotkey"`
	// LiveReload applies pacing, screenshot and log level changes to a
	// running session when the file is saved.
	LiveReload bool `yaml:"live_reload" toml:"live_reload"`
	// Notify posts a desktop notification while a session holds the seat.
	Notify     bool             `yaml:"notify" toml:"notify"`
	Seat       SeatConfig       `yaml:"seat" toml:"seat"`
	Devices    DevicesConfig    `yaml:"devices" toml:"devices"`
	Input      InputConfig      `yaml:"input" toml:"input"`
	Window     WindowConfig     `yaml:"window" toml:"window"`
	Screenshot ScreenshotConfig `yaml:"screenshot" toml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

func DefaultConfig() *Config {
	delays := input.DefaultDelays()
	return &Config{
		Picker:     "terminal",
		StopHotkey: "Control-Mod4-Escape",
		LiveReload: true,
		Notify:     true,
		Seat: SeatConfig{
			Label:               "CoX",
			AttachSettleDelay:   500 * time.Millisecond,
			TeardownSettleDelay: 100 * time.Millisecond,
		},
		Devices: DevicesConfig{
			PointerName:      "CoX Mouse Device",
			KeyboardName:     "CoX Keyboard Device",
			DiscoveryTimeout: 3 * time.Second,
		},
		Input: InputConfig{
			ClickDelay:     delays.Click,
			DoubleClickGap: delays.DoubleClickGap,
			KeyHold:        delays.KeyHold,
			KeyReleaseGap:  delays.KeyRelease,
			KeystrokeDelay: delays.Keystroke,
			ScrollDelay:    delays.Scroll,
			ScrollSettle:   delays.ScrollSettle,
			ScrollLimit:    5,
		},
		Window: WindowConfig{
			AlwaysOnTop: true,
		},
		Screenshot: ScreenshotConfig{
			Format: capture.FormatPNG,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Delays returns the executor pacing.
func (c *Config) Delays() input.Delays {
	return input.Delays{
		Click:          c.Input.ClickDelay,
		DoubleClickGap: c.Input.DoubleClickGap,
		KeyHold:        c.Input.KeyHold,
		KeyRelease:     c.Input.KeyReleaseGap,
		Keystroke:      c.Input.KeystrokeDelay,
		Scroll:         c.Input.ScrollDelay,
		ScrollSettle:   c.Input.ScrollSettle,
	}
}

// CaptureOptions returns the screenshot post-processing settings.
func (c *Config) CaptureOptions() capture.Options {
	return capture.Options{
		MaxWidth:  c.Screenshot.MaxWidth,
		MaxHeight: c.Screenshot.MaxHeight,
		Format:    c.Screenshot.Format,
		Quality:   c.Screenshot.Quality,
		Grid:      c.Screenshot.Grid,
	}
}

// SlogLevel maps logging.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetActionLogConfig returns the action log configuration with defaults
// applied.
func (c *Config) GetActionLogConfig() actionlog.Config {
	if c == nil {
		return actionlog.Config{}
	}
	cfg := c.Logging.ActionLog
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/xseat/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 50
	}
	return actionlog.Config{
		Enabled:        cfg.Enabled,
		Level:          actionlog.ParseLevel(c.Logging.Level),
		FilePath:       cfg.File,
		MaxSizeMB:      cfg.MaxSizeMB,
		MaxFiles:       cfg.MaxFiles,
		IncludeContent: cfg.IncludeContent,
		PreviewLength:  cfg.PreviewLength,
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Picker {
	case "terminal", "tui", "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "picker", Err: fmt.Errorf("picker must be one of: terminal, tui, auto, rofi, fuzzel, wofi, dmenu")}
	}

	if c.StopHotkey != "" && strings.TrimSpace(c.StopHotkey) != c.StopHotkey {
		return &ValidationError{Path: "stop_hotkey", Err: fmt.Errorf("stop_hotkey must not have surrounding whitespace")}
	}

	if strings.TrimSpace(c.Seat.Label) == "" {
		return &ValidationError{Path: "seat.label", Err: fmt.Errorf("label is required")}
	}
	if c.Seat.AttachSettleDelay < 0 {
		return &ValidationError{Path: "seat.attach_settle_delay", Err: fmt.Errorf("attach_settle_delay must be >= 0")}
	}
	if c.Seat.TeardownSettleDelay < 0 {
		return &ValidationError{Path: "seat.teardown_settle_delay", Err: fmt.Errorf("teardown_settle_delay must be >= 0")}
	}

	if err := validateDeviceName("devices.pointer_name", c.Devices.PointerName); err != nil {
		return err
	}
	if err := validateDeviceName("devices.keyboard_name", c.Devices.KeyboardName); err != nil {
		return err
	}
	if c.Devices.PointerName == c.Devices.KeyboardName {
		return &ValidationError{Path: "devices.keyboard_name", Err: fmt.Errorf("keyboard_name must differ from pointer_name")}
	}
	if c.Devices.DiscoveryTimeout <= 0 {
		return &ValidationError{Path: "devices.discovery_timeout", Err: fmt.Errorf("discovery_timeout must be > 0")}
	}

	durations := []struct {
		path string
		d    time.Duration
	}{
		{"input.click_delay", c.Input.ClickDelay},
		{"input.double_click_gap", c.Input.DoubleClickGap},
		{"input.key_hold", c.Input.KeyHold},
		{"input.key_release_gap", c.Input.KeyReleaseGap},
		{"input.keystroke_delay", c.Input.KeystrokeDelay},
		{"input.scroll_delay", c.Input.ScrollDelay},
		{"input.scroll_settle", c.Input.ScrollSettle},
	}
	for _, d := range durations {
		if d.d < 0 {
			return &ValidationError{Path: d.path, Err: fmt.Errorf("must be >= 0")}
		}
	}
	if c.Input.ScrollLimit <= 0 {
		return &ValidationError{Path: "input.scroll_limit", Err: fmt.Errorf("scroll_limit must be > 0")}
	}

	if c.Screenshot.MaxWidth < 0 || c.Screenshot.MaxHeight < 0 {
		return &ValidationError{Path: "screenshot", Err: fmt.Errorf("max_width and max_height must be >= 0")}
	}
	switch strings.ToLower(c.Screenshot.Format) {
	case capture.FormatPNG, capture.FormatJPEG, "jpg":
	default:
		return &ValidationError{Path: "screenshot.format", Err: fmt.Errorf("format must be one of: png, jpeg")}
	}
	if c.Screenshot.Quality < 0 || c.Screenshot.Quality > 100 {
		return &ValidationError{Path: "screenshot.quality", Err: fmt.Errorf("quality must be between 0 and 100")}
	}
	if c.Screenshot.Grid < 0 {
		return &ValidationError{Path: "screenshot.grid", Err: fmt.Errorf("grid must be >= 0")}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.ActionLog.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.action_log.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.ActionLog.MaxFiles < 0 {
		return &ValidationError{Path: "logging.action_log.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// uinput device names are limited to 79 bytes.
func validateDeviceName(path, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Path: path, Err: fmt.Errorf("device name is required")}
	}
	if len(name) >= 80 {
		return &ValidationError{Path: path, Err: fmt.Errorf("device name must be shorter than 80 bytes")}
	}
	return nil
}
