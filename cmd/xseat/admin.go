package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/xseat/internal/config"
	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/runtimepath"
	"github.com/1broseidon/xseat/internal/seat"
	"github.com/1broseidon/xseat/internal/tui"
	"github.com/1broseidon/xseat/internal/windowstate"
)

func runCleanup(args []string) int {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	label := fs.String("label", "", "Seat label to remove (default: seat.label)")
	force := fs.Bool("force", false, "Remove the seat even if its recorded owner is still running")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat cleanup [--label NAME] [--force] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Remove a seat left behind by a session that did not shut down cleanly.")
		fmt.Fprintln(os.Stderr, "Also clears always-on-top if that session had turned it on for its window.")
		fmt.Fprintln(os.Stderr, "Virtual devices disappear with the process that created them.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		return exitCode(err)
	}
	logger := newLogger(cfg)
	if *label == "" {
		*label = cfg.Seat.Label
	}

	state, err := runtimepath.ReadSessionState(*label)
	if err != nil {
		logger.Warn("unreadable session state", "error", err)
	}
	if state != nil && state.Alive() && !*force {
		return exitCode(fmt.Errorf("seat %q belongs to running pid %d; stop it or pass --force", *label, state.PID))
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return exitCode(err)
	}
	defer backend.Close()

	mgr := seat.NewManager(backend, seat.Config{Logger: logger})
	for _, name := range []string{cfg.Devices.PointerName, cfg.Devices.KeyboardName} {
		if _, found, err := mgr.FindDeviceID(name, true); err == nil && found {
			fmt.Fprintf(os.Stderr, "device %q is still present; another session may be running\n", name)
		}
	}

	removed, err := mgr.RemoveByLabel(*label)
	if err != nil {
		return exitCode(err)
	}
	if restored, err := restoreWindow(backend, state); err != nil {
		logger.Warn("could not clear always-on-top", "window", fmt.Sprintf("%#x", state.Window), "error", err)
	} else if restored {
		fmt.Printf("cleared always-on-top on window %#x\n", state.Window)
	}
	if err := runtimepath.RemoveSessionState(*label); err != nil {
		logger.Warn("remove session state", "error", err)
	}
	if removed {
		fmt.Printf("removed seat %q\n", *label)
	} else {
		fmt.Printf("no seat %q found\n", *label)
	}
	return 0
}

// restoreWindow clears always-on-top on the window a dead session forced
// it on. It reports whether a request was sent.
func restoreWindow(stacker windowstate.Stacker, state *runtimepath.SessionState) (bool, error) {
	if state == nil || !state.ForcedAbove || state.Window == 0 {
		return false, nil
	}
	if err := stacker.SetWindowAbove(platform.WindowID(state.Window), false); err != nil {
		return false, platform.WindowStateErr("clear always-on-top", err)
	}
	return true, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  xseat config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  xseat config print [--path PATH] [--defaults] [--toml]")
		fmt.Fprintln(os.Stderr, "  xseat config edit [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathHelp)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathHelp)
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		asTOML := fs.Bool("toml", false, "Print as TOML instead of YAML")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			if cfg, err = loadConfig(*path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		marshal := cfg.Marshal
		if *asTOML {
			marshal = cfg.EncodeTOML
		}
		data, err := marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathHelp)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		target := *path
		if target == "" {
			var err error
			if target, err = config.DefaultConfigPath(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		cfg, err := loadConfig(target)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		editor := &tui.Editor{In: os.Stdin, Out: os.Stdout}
		if err := editor.Edit(target, cfg); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(os.Stderr, "not saved")
				return 1
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
