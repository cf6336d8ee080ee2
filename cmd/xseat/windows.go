package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/picker"
	"github.com/1broseidon/xseat/internal/platform"
)

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat windows [--json] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List visible top-level windows with their ids and geometry.")
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
	newLogger(cfg)
	backend, err := newBackend(cfg)
	if err != nil {
		return exitCode(err)
	}
	defer backend.Close()

	windows, err := backend.ListWindows()
	if err != nil {
		return exitCode(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(windows); err != nil {
			return exitCode(err)
		}
		return 0
	}
	if len(windows) == 0 {
		fmt.Println("No windows found.")
		return 0
	}
	for _, w := range windows {
		fmt.Printf("0x%08x  %s\n", uint32(w.ID), picker.Label(w))
	}
	return 0
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	pickerName := fs.String("picker", "", "Override the configured picker (terminal, tui, auto, rofi, fuzzel, wofi, dmenu)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat pick [--picker NAME] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose a window and print its id, e.g. xseat serve --window $(xseat pick).")
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
	if *pickerName != "" {
		cfg.Picker = *pickerName
	}
	newLogger(cfg)
	backend, err := newBackend(cfg)
	if err != nil {
		return exitCode(err)
	}
	defer backend.Close()

	w, err := pickWindow(cfg, backend)
	if err != nil {
		return exitCode(err)
	}
	fmt.Printf("0x%x\n", uint32(w.ID))
	return 0
}

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	windowFlag := fs.String("window", "", "Window id to measure (default: whole desktop)")
	shotPath := fs.String("shot", "", "Write a screenshot of the window (or desktop) to this file")
	grid := fs.Int("grid", -1, "Overlay a coordinate grid every N pixels (default: screenshot.grid)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat probe [--window ID] [--shot FILE] [--grid N] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print screen resolution and window geometry. No devices or seats are created.")
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
	newLogger(cfg)
	backend, err := newBackend(cfg)
	if err != nil {
		return exitCode(err)
	}
	defer backend.Close()

	screen, err := backend.Resolution()
	if err != nil {
		return exitCode(err)
	}
	fmt.Printf("screen: %dx%d\n", screen.Width, screen.Height)
	if monitors, err := backend.Monitors(); err != nil {
		slog.Debug("monitors unavailable", "error", err)
	} else {
		for _, m := range monitors {
			fmt.Printf("monitor %d: %s %dx%d at (%d,%d)\n", m.ID, m.Name, m.Bounds.Width, m.Bounds.Height, m.Bounds.X, m.Bounds.Y)
		}
	}

	region := platform.Rect{Width: screen.Width, Height: screen.Height}
	if *windowFlag != "" {
		id, err := parseWindowID(*windowFlag)
		if err != nil {
			return exitCode(err)
		}
		region, err = backend.WindowGeometry(id)
		if err != nil {
			return exitCode(err)
		}
		ext := backend.FrameExtents(id)
		fmt.Printf("window: 0x%x %dx%d at (%d,%d)\n", uint32(id), region.Width, region.Height, region.X, region.Y)
		fmt.Printf("frame: left=%d right=%d top=%d bottom=%d\n", ext.Left, ext.Right, ext.Top, ext.Bottom)
	}

	if *shotPath == "" {
		return 0
	}
	opts := cfg.CaptureOptions()
	if *grid >= 0 {
		opts.Grid = *grid
	}
	full, err := backend.Capture()
	if err != nil {
		return exitCode(err)
	}
	shot, err := capture.Process(full, region, opts)
	if err != nil {
		return exitCode(err)
	}
	if err := os.WriteFile(*shotPath, shot.Data, 0644); err != nil {
		return exitCode(err)
	}
	fmt.Printf("screenshot: %s %dx%d (%s, scale %.3f)\n", *shotPath, shot.Width, shot.Height, shot.MIMEType, shot.Scale)
	return 0
}
