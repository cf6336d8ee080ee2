package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/xseat/internal/computer"
	"github.com/1broseidon/xseat/internal/mcp"
)

func runDemo(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	target := addTargetFlags(fs)
	loops := fs.Int("loops", 10, "Number of corner sweeps")
	interval := fs.Duration("interval", time.Second, "Pause at each corner")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat run [--window ID|--pick|--desktop] [--loops N] [--interval D] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a session and move the dedicated pointer across the window corners.")
		fmt.Fprintln(os.Stderr, "Your own mouse and keyboard keep working while it runs.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	env, err := openRuntime(ctx, cancel, *path, target, false)
	if err != nil {
		return exitCode(err)
	}
	return exitCode(env.run(func() error {
		return sweepCorners(ctx, env, *loops, *interval)
	}))
}

func sweepCorners(ctx context.Context, env *runtimeEnv, loops int, interval time.Duration) error {
	size := env.session.Size()
	w, h := size.Width-1, size.Height-1
	corners := [][2]int{{0, 0}, {w, 0}, {0, h}, {w, h}}

	for i := 0; i < loops; i++ {
		for _, c := range corners {
			if err := env.session.MoveTo(c[0], c[1]); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
	}
	return nil
}

func newDispatcher(env *runtimeEnv, messages io.Writer) *computer.Dispatcher {
	return computer.NewDispatcher(env.session, computer.Options{
		ScrollLimit: env.cfg.Input.ScrollLimit,
		Messages:    messages,
		ActionLog:   env.actionLog,
		Logger:      env.logger,
	})
}

func runExec(args []string) int {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	target := addTargetFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat exec [--window ID|--pick|--desktop] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Drive a session with computer-use response items.")
		fmt.Fprintln(os.Stderr, "The first stdout line is the tool spec. Each stdin line is one item")
		fmt.Fprintln(os.Stderr, "(message or computer_call); each computer_call is answered with one")
		fmt.Fprintln(os.Stderr, "computer_call_output line. Message text goes to stderr.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	env, err := openRuntime(ctx, cancel, *path, target, true)
	if err != nil {
		return exitCode(err)
	}
	return exitCode(env.run(func() error {
		return driveExec(ctx, newDispatcher(env, os.Stderr), os.Stdin, os.Stdout)
	}))
}

// execError reports an item that could not be handled.
type execError struct {
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	Error  string `json:"error"`
}

// driveExec answers JSON-line items from in until EOF or cancellation.
// Failures are reported on out and do not stop the loop.
func driveExec(ctx context.Context, d *computer.Dispatcher, in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(d.ToolSpec()); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var item computer.Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			if err := enc.Encode(execError{Type: "error", Error: fmt.Sprintf("invalid item: %v", err)}); err != nil {
				return err
			}
			continue
		}
		outputs, err := d.Handle(item)
		if err != nil {
			if err := enc.Encode(execError{Type: "error", CallID: item.CallID, Error: err.Error()}); err != nil {
				return err
			}
			continue
		}
		for _, o := range outputs {
			if err := enc.Encode(o); err != nil {
				return err
			}
		}
	}
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathHelp)
	target := addTargetFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xseat serve [--window ID|--pick|--desktop] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a session and serve it as MCP tools on stdio. --pick needs a")
		fmt.Fprintln(os.Stderr, "launcher picker (rofi, fuzzel, wofi, dmenu) since stdin carries the protocol.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Example:")
		fmt.Fprintln(os.Stderr, "  claude mcp add xseat -- xseat serve --window 0x2c00001")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	env, err := openRuntime(ctx, cancel, *path, target, true)
	if err != nil {
		return exitCode(err)
	}
	return exitCode(env.run(func() error {
		server := mcp.NewServer(newDispatcher(env, os.Stderr), env.logger)
		if err := server.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}))
}
