package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/xseat/internal/actionlog"
	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/config"
	"github.com/1broseidon/xseat/internal/hotkeys"
	"github.com/1broseidon/xseat/internal/input"
	"github.com/1broseidon/xseat/internal/notify"
	"github.com/1broseidon/xseat/internal/picker"
	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/runtimepath"
	"github.com/1broseidon/xseat/internal/seat"
	"github.com/1broseidon/xseat/internal/session"
)

const configPathHelp = "Config file path (default: ~/.config/xseat/config.yaml; *.toml is read as TOML)"

// targetFlags selects the window a session drives.
type targetFlags struct {
	window  string
	pick    bool
	desktop bool
}

func addTargetFlags(fs *flag.FlagSet) *targetFlags {
	t := &targetFlags{}
	fs.StringVar(&t.window, "window", "", "Target window id (hex 0x... or decimal)")
	fs.BoolVar(&t.pick, "pick", false, "Choose the target window interactively (default)")
	fs.BoolVar(&t.desktop, "desktop", false, "Drive the whole desktop instead of one window")
	return t
}

// resolveConfigPath returns path, or the default location when it is empty.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

func loadConfig(path string) (*config.Config, error) {
	path, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	return cfg, nil
}

// logLevel is shared by every logger so a config reload can change it.
var logLevel = new(slog.LevelVar)

// newLogger builds the stderr logger and installs it as the default.
func newLogger(cfg *config.Config) *slog.Logger {
	logLevel.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func newBackend(cfg *config.Config) (*platform.LinuxBackend, error) {
	var opts []platform.LinuxOption
	if cfg.Devices.UinputPath != "" {
		opts = append(opts, platform.WithUinputPath(cfg.Devices.UinputPath))
	}
	return platform.NewLinuxBackendFromDisplay(opts...)
}

func parseWindowID(s string) (platform.WindowID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowID(id), nil
}

// resolveTarget returns the window selected by flags, zero for the whole
// desktop. stdinBusy rules out pickers that read from stdin.
func resolveTarget(cfg *config.Config, backend platform.Backend, t *targetFlags, stdinBusy bool) (platform.WindowID, error) {
	switch {
	case t.window != "" && (t.pick || t.desktop), t.pick && t.desktop:
		return 0, fmt.Errorf("--window, --pick and --desktop are mutually exclusive")
	case t.window != "":
		return parseWindowID(t.window)
	case t.desktop:
		return 0, nil
	}

	name := strings.ToLower(cfg.Picker)
	if stdinBusy && (name == "" || name == "terminal" || name == "tui") {
		return 0, fmt.Errorf("stdin is in use by this command; pass --window or --desktop, or set picker to a launcher (rofi, fuzzel, wofi, dmenu)")
	}
	w, err := pickWindow(cfg, backend)
	if err != nil {
		return 0, err
	}
	return w.ID, nil
}

func pickWindow(cfg *config.Config, backend platform.Backend) (platform.Window, error) {
	windows, err := backend.ListWindows()
	if err != nil {
		return platform.Window{}, err
	}
	p, err := picker.New(cfg.Picker)
	if err != nil {
		return platform.Window{}, err
	}
	if term, ok := p.(*picker.Terminal); ok {
		// Keep stdout clean for commands that print results.
		term.Out = os.Stderr
	}
	return p.Pick(windows)
}

func sessionOptions(cfg *config.Config, window platform.WindowID, logger *slog.Logger) session.Options {
	return session.Options{
		Window:       window,
		SeatLabel:    cfg.Seat.Label,
		PointerName:  cfg.Devices.PointerName,
		KeyboardName: cfg.Devices.KeyboardName,
		Seat: seat.Config{
			AttachSettleDelay: cfg.Seat.AttachSettleDelay,
			DiscoveryTimeout:  cfg.Devices.DiscoveryTimeout,
			ReclaimStale:      cfg.Seat.ReclaimStale,
		},
		TeardownSettleDelay: cfg.Seat.TeardownSettleDelay,
		Delays:              cfg.Delays(),
		Capture:             cfg.CaptureOptions(),
		AlwaysOnTop:         cfg.Window.AlwaysOnTop,
		FocusOnEnter:        cfg.Window.FocusOnEnter,
		ReservedKeys:        hotkeys.ChordKeys(cfg.StopHotkey),
		Logger:              logger,
	}
}

// runtimeEnv bundles what every session command sets up.
type runtimeEnv struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   *platform.LinuxBackend
	actionLog *actionlog.Logger
	session   *session.Session
	stopKey   *hotkeys.StopKey
	watcher   *config.Watcher
	notifier  *notify.Notifier
}

// openRuntime loads config, connects to X, opens the action log and the
// session. The stop hotkey calls stop. The caller runs its work through run,
// which closes the environment.
func openRuntime(ctx context.Context, stop context.CancelFunc, configPath string, t *targetFlags, stdinBusy bool) (*runtimeEnv, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	env := &runtimeEnv{cfg: cfg, logger: newLogger(cfg)}

	env.backend, err = newBackend(cfg)
	if err != nil {
		return nil, err
	}

	window, err := resolveTarget(cfg, env.backend, t, stdinBusy)
	if err != nil {
		env.backend.Close()
		return nil, err
	}

	if err := checkSeatOwner(cfg, env.logger); err != nil {
		env.backend.Close()
		return nil, err
	}

	env.actionLog, err = actionlog.New(cfg.GetActionLogConfig())
	if err != nil {
		env.logger.Warn("action log disabled", "error", err)
		env.actionLog = nil
	}

	env.session, err = session.Open(ctx, env.backend, sessionOptions(cfg, window, env.logger))
	if err != nil {
		env.actionLog.Close()
		env.backend.Close()
		return nil, err
	}

	if err := runtimepath.WriteSessionState(runtimepath.SessionState{
		PID:          os.Getpid(),
		Seat:         cfg.Seat.Label,
		PointerName:  cfg.Devices.PointerName,
		KeyboardName: cfg.Devices.KeyboardName,
		Window:       uint32(window),
		ForcedAbove:  env.session.ForcedAbove(),
		StartedAt:    time.Now(),
	}); err != nil {
		env.logger.Warn("session state not recorded", "error", err)
	}

	if cfg.Notify {
		if env.notifier, err = notify.New("xseat", env.logger); err != nil {
			env.logger.Debug("notifications disabled", "error", err)
			env.notifier = nil
		}
	}

	if cfg.StopHotkey != "" {
		env.stopKey, err = hotkeys.Listen(cfg.StopHotkey, func() {
			env.logger.Warn("stop hotkey pressed", "keys", cfg.StopHotkey)
			env.notifier.Post("Stopping agent session", "Releasing the input seat", notify.UrgencyNormal)
			stop()
		})
		if err != nil {
			env.logger.Warn("stop hotkey unavailable", "error", err)
		} else {
			env.logger.Info("press stop hotkey to end the session", "keys", env.stopKey.Sequence())
		}
	}

	if cfg.LiveReload {
		env.watchConfig(configPath)
	}

	env.notifier.Post("Agent seat active", startBody(window, env.stopKey), notify.UrgencyCritical)

	size := env.session.Size()
	env.actionLog.Log(actionlog.ActionSessionStart, uint32(window), map[string]any{
		"width":  size.Width,
		"height": size.Height,
		"seat":   cfg.Seat.Label,
	})
	env.logger.Info("session open", "window", fmt.Sprintf("%#x", uint32(window)), "width", size.Width, "height", size.Height)
	return env, nil
}

// watchConfig applies saved config changes to the open session. Settings
// fixed at start (seat, devices, window handling) need a restart.
func (e *runtimeEnv) watchConfig(path string) {
	path, err := resolveConfigPath(path)
	if err != nil {
		e.logger.Warn("live reload disabled", "error", err)
		return
	}
	e.watcher, err = config.Watch(path, func(cfg *config.Config) {
		applyReload(e.session, cfg)
		e.logger.Debug("session settings updated", "level", cfg.Logging.Level)
	}, e.logger)
	if err != nil {
		e.logger.Debug("live reload disabled", "error", err)
	}
}

func startBody(window platform.WindowID, stopKey *hotkeys.StopKey) string {
	target := "the desktop is"
	if window != 0 {
		target = fmt.Sprintf("window %#x is", uint32(window))
	}
	body := fmt.Sprintf("An agent seat is driving input; %s under automated control.", target)
	if stopKey != nil {
		body += fmt.Sprintf(" Press %s to stop.", stopKey.Sequence())
	}
	return body
}

// reloadTarget is the part of a session a config reload touches.
type reloadTarget interface {
	SetDelays(input.Delays)
	SetCapture(capture.Options)
}

func applyReload(t reloadTarget, cfg *config.Config) {
	t.SetDelays(cfg.Delays())
	t.SetCapture(cfg.CaptureOptions())
	logLevel.Set(cfg.SlogLevel())
}

// run calls fn and then closes the environment, also when fn panics. A
// panic is logged and re-raised once teardown is done.
func (e *runtimeEnv) run(fn func() error) error {
	return withTeardown(fn, e.close, e.logger)
}

func withTeardown(fn, teardown func() error, logger *slog.Logger) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			logger.Error("panic during session; releasing the seat", "panic", r)
		}
		if cerr := teardown(); err == nil {
			err = cerr
		}
		if r != nil {
			panic(r)
		}
	}()
	return fn()
}

func (e *runtimeEnv) close() error {
	if err := e.watcher.Close(); err != nil {
		e.logger.Debug("close config watcher", "error", err)
	}
	e.stopKey.Close()
	err := e.session.Close()
	details := map[string]any{}
	if err != nil {
		details["error"] = err.Error()
	}
	e.actionLog.Log(actionlog.ActionSessionEnd, uint32(e.session.Window()), details)
	e.notifier.Post("Agent seat released", "Input is back to normal", notify.UrgencyNormal)
	if cerr := e.notifier.Close(); cerr != nil {
		e.logger.Debug("close notifier", "error", cerr)
	}
	if cerr := e.actionLog.Close(); cerr != nil {
		e.logger.Warn("close action log", "error", cerr)
	}
	if rerr := runtimepath.RemoveSessionState(e.cfg.Seat.Label); rerr != nil {
		e.logger.Warn("remove session state", "error", rerr)
	}
	e.backend.Close()
	return err
}

// checkSeatOwner refuses to start while another live process holds the seat.
func checkSeatOwner(cfg *config.Config, logger *slog.Logger) error {
	state, err := runtimepath.ReadSessionState(cfg.Seat.Label)
	if err != nil {
		logger.Warn("unreadable session state", "error", err)
		return nil
	}
	if state == nil {
		return nil
	}
	if state.Alive() && state.PID != os.Getpid() {
		return fmt.Errorf("seat %q is held by pid %d since %s", cfg.Seat.Label, state.PID, state.StartedAt.Format(time.RFC3339))
	}
	logger.Warn("previous session did not shut down cleanly", "seat", state.Seat, "pid", state.PID)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM so deferred teardown runs.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, picker.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "cancelled")
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
