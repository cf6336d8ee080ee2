package picker

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/xseat/internal/platform"
)

// Terminal prints a numbered menu and reads the choice from a line-based
// input.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a picker bound to stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

// Pick shows windows as a 1-based list. "q" cancels; anything that is not a
// listed number prompts again.
func (t *Terminal) Pick(windows []platform.Window) (platform.Window, error) {
	if len(windows) == 0 {
		return platform.Window{}, fmt.Errorf("no windows to choose from")
	}
	if f, ok := t.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return platform.Window{}, fmt.Errorf("window picker requires an interactive terminal on stdin")
	}

	fmt.Fprintln(t.Out, "Available windows:")
	for i, w := range windows {
		fmt.Fprintf(t.Out, "%d. %s\n", i+1, Label(w))
	}

	scanner := bufio.NewScanner(t.In)
	for {
		fmt.Fprintf(t.Out, "Select a window [1-%d, q to quit]: ", len(windows))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return platform.Window{}, fmt.Errorf("failed to read selection: %w", err)
			}
			return platform.Window{}, ErrCancelled
		}

		choice := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(choice, "q") {
			return platform.Window{}, ErrCancelled
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(windows) {
			fmt.Fprintln(t.Out, "Invalid choice. Please try again.")
			continue
		}
		return windows[n-1], nil
	}
}
