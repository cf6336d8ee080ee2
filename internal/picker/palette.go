package picker

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"

	"github.com/1broseidon/xseat/internal/platform"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcherOrder is the auto-detection priority.
var launcherOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

type launcherCaps struct {
	Markup      bool // pango markup in rows
	IndexOutput bool // prints the selected row index instead of its text
	MessageBar  bool
}

// Palette shows the windows in an external dmenu-style launcher.
type Palette struct {
	command string
	kind    launcherKind
	caps    launcherCaps
	prompt  string

	lookPath func(string) (string, error)
	run      func(command string, args []string, input string) (string, error)
}

// NewPalette returns a launcher picker by name. "auto" (or empty) picks the
// first launcher found in PATH.
func NewPalette(name string) (*Palette, error) {
	return newPalette(name, exec.LookPath)
}

func newPalette(name string, lookPath func(string) (string, error)) (*Palette, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := detectLauncher(lookPath)
		if err != nil {
			return nil, err
		}
		name = detected
	}

	p := &Palette{command: name, prompt: "xseat", lookPath: lookPath, run: runLauncher}
	switch name {
	case "rofi":
		p.kind = kindRofi
		p.caps = launcherCaps{Markup: true, IndexOutput: true, MessageBar: true}
	case "fuzzel":
		p.kind = kindFuzzel
		p.caps = launcherCaps{IndexOutput: true}
	case "wofi":
		p.kind = kindWofi
		p.caps = launcherCaps{Markup: true}
	case "dmenu":
		p.kind = kindDmenu
	default:
		return nil, fmt.Errorf("unknown picker: %q (expected: terminal, tui, auto, rofi, fuzzel, wofi, dmenu)", name)
	}
	if _, err := lookPath(name); err != nil {
		return nil, fmt.Errorf("picker %q not found in PATH", name)
	}
	return p, nil
}

func detectLauncher(lookPath func(string) (string, error)) (string, error) {
	for _, name := range launcherOrder {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no launcher found in PATH (looked for: %s)", strings.Join(launcherOrder, ", "))
}

// Command returns the launcher executable.
func (p *Palette) Command() string {
	return p.command
}

// Pick runs the launcher once. Closing it without a selection returns
// ErrCancelled.
func (p *Palette) Pick(windows []platform.Window) (platform.Window, error) {
	if len(windows) == 0 {
		return platform.Window{}, fmt.Errorf("no windows to choose from")
	}

	labels := p.labels(windows)
	input := p.formatInput(windows, labels)
	out, err := p.run(p.command, p.buildArgs(len(windows)), input)
	selection := strings.TrimSpace(out)
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return platform.Window{}, ErrCancelled
		}
		return platform.Window{}, err
	}
	if selection == "" {
		return platform.Window{}, ErrCancelled
	}

	idx, err := p.parseSelection(selection, labels)
	if err != nil {
		return platform.Window{}, err
	}
	return windows[idx], nil
}

// labels returns the visible rows. Launchers that answer with the row text
// need unique labels.
func (p *Palette) labels(windows []platform.Window) []string {
	labels := make([]string, len(windows))
	seen := make(map[string]int)
	for i, w := range windows {
		label := sanitizeLabel(Label(w))
		if !p.caps.IndexOutput {
			if count := seen[label]; count > 0 {
				seen[label]++
				label = fmt.Sprintf("%s (%d)", label, count+1)
			} else {
				seen[label] = 1
			}
		}
		labels[i] = label
	}
	return labels
}

func (p *Palette) formatInput(windows []platform.Window, labels []string) string {
	lines := make([]string, len(windows))
	for i, w := range windows {
		lines[i] = p.formatRow(w, labels[i])
	}
	return strings.Join(lines, "\n")
}

func (p *Palette) formatRow(w platform.Window, label string) string {
	display := label
	if p.caps.Markup {
		display = html.EscapeString(display)
	}
	if p.kind != kindRofi {
		return display
	}
	// Rofi row properties: one NUL, then key\x1fvalue pairs.
	return display + "\x00" + strings.Join([]string{
		"info", fmt.Sprintf("0x%x", uint32(w.ID)),
		"meta", sanitizeRofiField(w.Name),
	}, "\x1f")
}

func (p *Palette) buildArgs(rows int) []string {
	var args []string
	switch p.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-p", p.prompt, "-format", "i", "-no-custom", "-markup-rows"}
		args = append(args, "-mesg", fmt.Sprintf("%d windows", rows))
	case kindFuzzel:
		args = []string{"--dmenu", "--prompt", p.prompt + " ", "--index"}
	case kindWofi:
		args = []string{"--dmenu", "--prompt", p.prompt, "--allow-markup"}
	case kindDmenu:
		args = []string{"-i", "-p", p.prompt}
	}
	return args
}

func (p *Palette) parseSelection(selection string, labels []string) (int, error) {
	if p.caps.IndexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(labels) {
				return 0, fmt.Errorf("%s: index %d out of range", p.command, idx)
			}
			return idx, nil
		}
	}
	for i, label := range labels {
		if label == selection {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: unknown selection %q", p.command, selection)
}

func runLauncher(command string, args []string, input string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s failed: %s", command, msg)
		}
		return string(out), fmt.Errorf("%s failed: %w", command, err)
	}
	return string(out), err
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

// Launchers exit 1 for "no selection" and 130 on Ctrl+C.
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
