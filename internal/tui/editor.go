// Package tui provides the interactive configuration editor.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xseat/internal/config"
)

// ErrAborted is returned when the user leaves the editor without saving.
var ErrAborted = errors.New("config edit aborted")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// formValues holds form-bound values; huh inputs edit strings, converted on
// apply.
type formValues struct {
	label        string
	attachSettle string
	reclaimStale bool

	picker       string
	stopHotkey   string
	alwaysOnTop  bool
	focusOnEnter bool

	maxWidth  string
	maxHeight string
	format    string
	grid      string

	logLevel  string
	actionLog bool
}

func newFormValues(cfg *config.Config) *formValues {
	return &formValues{
		label:        cfg.Seat.Label,
		attachSettle: cfg.Seat.AttachSettleDelay.String(),
		reclaimStale: cfg.Seat.ReclaimStale,
		picker:       cfg.Picker,
		stopHotkey:   cfg.StopHotkey,
		alwaysOnTop:  cfg.Window.AlwaysOnTop,
		focusOnEnter: cfg.Window.FocusOnEnter,
		maxWidth:     strconv.Itoa(cfg.Screenshot.MaxWidth),
		maxHeight:    strconv.Itoa(cfg.Screenshot.MaxHeight),
		format:       cfg.Screenshot.Format,
		grid:         strconv.Itoa(cfg.Screenshot.Grid),
		logLevel:     cfg.Logging.Level,
		actionLog:    cfg.Logging.ActionLog.Enabled,
	}
}

// apply writes the values into cfg and validates the result.
func (v *formValues) apply(cfg *config.Config) error {
	settle, err := time.ParseDuration(strings.TrimSpace(v.attachSettle))
	if err != nil {
		return fmt.Errorf("attach settle delay: %w", err)
	}
	maxW, err := parseNonNegative(v.maxWidth)
	if err != nil {
		return fmt.Errorf("max width: %w", err)
	}
	maxH, err := parseNonNegative(v.maxHeight)
	if err != nil {
		return fmt.Errorf("max height: %w", err)
	}
	grid, err := parseNonNegative(v.grid)
	if err != nil {
		return fmt.Errorf("grid: %w", err)
	}

	cfg.Seat.Label = strings.TrimSpace(v.label)
	cfg.Seat.AttachSettleDelay = settle
	cfg.Seat.ReclaimStale = v.reclaimStale
	cfg.Picker = v.picker
	cfg.StopHotkey = strings.TrimSpace(v.stopHotkey)
	cfg.Window.AlwaysOnTop = v.alwaysOnTop
	cfg.Window.FocusOnEnter = v.focusOnEnter
	cfg.Screenshot.MaxWidth = maxW
	cfg.Screenshot.MaxHeight = maxH
	cfg.Screenshot.Format = v.format
	cfg.Screenshot.Grid = grid
	cfg.Logging.Level = v.logLevel
	cfg.Logging.ActionLog.Enabled = v.actionLog
	return cfg.Validate()
}

func parseNonNegative(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0")
	}
	return n, nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a duration like 500ms")
	}
	if d < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func validateNonNegative(s string) error {
	_, err := parseNonNegative(s)
	return err
}

func (v *formValues) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("seat.label").
				Title("Seat Label").
				Description("Name of the dedicated pointer/keyboard pair").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("label is required")
					}
					return nil
				}).
				Value(&v.label),
			huh.NewInput().
				Key("seat.attach_settle_delay").
				Title("Attach Settle Delay").
				Description("Pause after attaching each device").
				Validate(validateDuration).
				Value(&v.attachSettle),
			huh.NewConfirm().
				Key("seat.reclaim_stale").
				Title("Reclaim Stale Seat").
				Description("Remove a leftover seat with the same label at startup").
				Value(&v.reclaimStale),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("picker").
				Title("Window Picker").
				Options(huh.NewOptions("terminal", "tui", "auto", "rofi", "fuzzel", "wofi", "dmenu")...).
				Value(&v.picker),
			huh.NewInput().
				Key("stop_hotkey").
				Title("Stop Hotkey").
				Description("Global key sequence that ends a session, empty disables").
				Value(&v.stopHotkey),
			huh.NewConfirm().
				Key("window.always_on_top").
				Title("Keep Window On Top").
				Value(&v.alwaysOnTop),
			huh.NewConfirm().
				Key("window.focus_on_enter").
				Title("Focus Window On Start").
				Value(&v.focusOnEnter),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("screenshot.max_width").
				Title("Screenshot Max Width").
				Description("0 keeps the native size").
				Validate(validateNonNegative).
				Value(&v.maxWidth),
			huh.NewInput().
				Key("screenshot.max_height").
				Title("Screenshot Max Height").
				Validate(validateNonNegative).
				Value(&v.maxHeight),
			huh.NewSelect[string]().
				Key("screenshot.format").
				Title("Screenshot Format").
				Options(huh.NewOptions("png", "jpeg")...).
				Value(&v.format),
			huh.NewInput().
				Key("screenshot.grid").
				Title("Coordinate Grid").
				Description("Label a grid every N pixels; 0 disables").
				Validate(validateNonNegative).
				Value(&v.grid),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("logging.level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&v.logLevel),
			huh.NewConfirm().
				Key("logging.action_log.enabled").
				Title("Action Log").
				Description("Record every dispatched action to a file").
				Value(&v.actionLog),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// Editor edits a configuration file interactively.
type Editor struct {
	In  io.Reader
	Out io.Writer
}

// Edit runs the form over cfg, shows the resulting diff and writes path once
// confirmed. It returns ErrAborted when nothing is saved.
func (e *Editor) Edit(path string, cfg *config.Config) error {
	original := *cfg
	values := newFormValues(cfg)

	if err := e.run(values.form()); err != nil {
		return err
	}

	edited := original
	if err := values.apply(&edited); err != nil {
		return err
	}

	changes, err := configChanges(&original, &edited)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(e.Out, dimStyle.Render("No changes."))
		return nil
	}
	fmt.Fprintln(e.Out, titleStyle.Render("Pending changes to "+path))
	fmt.Fprintln(e.Out, renderChanges(changes))

	save := true
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save changes?").
			Affirmative("Save").
			Negative("Discard").
			Value(&save),
	))
	if err := e.run(confirm); err != nil {
		return err
	}
	if !save {
		return ErrAborted
	}

	if err := edited.WriteFile(path); err != nil {
		return err
	}
	*cfg = edited
	fmt.Fprintln(e.Out, okStyle.Render("Config saved"))
	return nil
}

func (e *Editor) run(f *huh.Form) error {
	if e.In != nil {
		f = f.WithInput(e.In)
	}
	if e.Out != nil {
		f = f.WithOutput(e.Out)
	}
	if err := f.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
