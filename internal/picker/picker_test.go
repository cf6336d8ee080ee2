package picker

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/xseat/internal/platform"
)

var testWindows = []platform.Window{
	{ID: 0x1a00003, Name: "Terminal", X: 0, Y: 0, Width: 800, Height: 600},
	{ID: 0x2c00001, Name: "Firefox", X: 100, Y: 50, Width: 1280, Height: 720},
	{ID: 0x2c00002, Name: "Firefox", X: 900, Y: 50, Width: 640, Height: 480},
}

func TestLabel(t *testing.T) {
	got := Label(testWindows[1])
	want := "Firefox (1280x720) at position (100,50)"
	if got != want {
		t.Fatalf("Label() = %q, want %q", got, want)
	}
	if got := Label(platform.Window{ID: 0x42, Width: 1, Height: 1}); !strings.HasPrefix(got, "0x42 ") {
		t.Fatalf("unnamed window label = %q", got)
	}
}

func TestTerminalPick(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  platform.WindowID
		wantErr error
		retries int
	}{
		{name: "first", input: "1\n", wantID: 0x1a00003},
		{name: "last with spaces", input: "  3 \n", wantID: 0x2c00002},
		{name: "retry after junk", input: "abc\n0\n4\n2\n", wantID: 0x2c00001, retries: 3},
		{name: "quit", input: "q\n", wantErr: ErrCancelled},
		{name: "quit upper", input: "Q\n", wantErr: ErrCancelled},
		{name: "eof", input: "", wantErr: ErrCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &Terminal{In: strings.NewReader(tt.input), Out: &out}
			got, err := p.Pick(testWindows)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Pick() error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Fatalf("picked 0x%x, want 0x%x", got.ID, tt.wantID)
			}
			if n := strings.Count(out.String(), "Invalid choice"); n != tt.retries {
				t.Fatalf("retries = %d, want %d", n, tt.retries)
			}
		})
	}
}

func TestTerminalPick_Menu(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{In: strings.NewReader("1\n"), Out: &out}
	if _, err := p.Pick(testWindows); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"1. Terminal (800x600) at position (0,0)",
		"2. Firefox (1280x720) at position (100,50)",
		"3. Firefox (640x480) at position (900,50)",
	} {
		if !strings.Contains(out.String(), line+"\n") {
			t.Errorf("menu missing %q:\n%s", line, out.String())
		}
	}
}

func TestTerminalPick_NoWindows(t *testing.T) {
	p := &Terminal{In: strings.NewReader("1\n"), Out: &bytes.Buffer{}}
	if _, err := p.Pick(nil); err == nil {
		t.Fatal("expected error for empty listing")
	}
}

func allFound(string) (string, error) { return "/usr/bin/x", nil }

func onlyFound(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestNewPalette_Detection(t *testing.T) {
	tests := []struct {
		name    string
		found   []string
		want    string
		wantErr bool
	}{
		{name: "auto", found: []string{"rofi", "dmenu"}, want: "rofi"},
		{name: "", found: []string{"wofi", "dmenu"}, want: "wofi"},
		{name: "auto", found: nil, wantErr: true},
		{name: "dmenu", found: []string{"dmenu"}, want: "dmenu"},
		{name: "fuzzel", found: []string{"rofi"}, wantErr: true},
		{name: "zenity", found: []string{"zenity"}, wantErr: true},
	}
	for _, tt := range tests {
		p, err := newPalette(tt.name, onlyFound(tt.found...))
		if tt.wantErr {
			if err == nil {
				t.Errorf("newPalette(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("newPalette(%q) error: %v", tt.name, err)
			continue
		}
		if p.Command() != tt.want {
			t.Errorf("newPalette(%q) = %q, want %q", tt.name, p.Command(), tt.want)
		}
	}
}

func TestPalette_RofiRows(t *testing.T) {
	p, err := newPalette("rofi", allFound)
	if err != nil {
		t.Fatal(err)
	}
	w := platform.Window{ID: 0x10, Name: "a<b>", Width: 10, Height: 20}
	row := p.formatRow(w, Label(w))

	if got := strings.Count(row, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, row)
	}
	if !strings.HasPrefix(row, "a&lt;b&gt; (10x20)") {
		t.Fatalf("expected escaped markup, got %q", row)
	}
	if !strings.Contains(row, "\x00info\x1f0x10\x1fmeta\x1fa<b>") {
		t.Fatalf("expected info/meta properties, got %q", row)
	}

	args := strings.Join(p.buildArgs(3), " ")
	for _, want := range []string{"-dmenu", "-format i", "-no-custom", "-mesg 3 windows"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestPalette_PickByIndex(t *testing.T) {
	p, err := newPalette("fuzzel", allFound)
	if err != nil {
		t.Fatal(err)
	}
	var gotInput string
	p.run = func(command string, args []string, input string) (string, error) {
		gotInput = input
		return "2\n", nil
	}

	w, err := p.Pick(testWindows)
	if err != nil {
		t.Fatalf("Pick() error: %v", err)
	}
	if w.ID != 0x2c00002 {
		t.Fatalf("picked 0x%x", w.ID)
	}
	if strings.Count(gotInput, "\n") != 2 {
		t.Fatalf("expected 3 rows, got %q", gotInput)
	}
}

func TestPalette_PickByLabelDisambiguates(t *testing.T) {
	p, err := newPalette("dmenu", allFound)
	if err != nil {
		t.Fatal(err)
	}
	dup := []platform.Window{
		{ID: 1, Name: "xterm", Width: 10, Height: 10},
		{ID: 2, Name: "xterm", Width: 10, Height: 10},
	}
	p.run = func(command string, args []string, input string) (string, error) {
		rows := strings.Split(input, "\n")
		if rows[0] == rows[1] {
			t.Fatalf("duplicate rows: %q", rows)
		}
		return rows[1], nil
	}

	w, err := p.Pick(dup)
	if err != nil {
		t.Fatalf("Pick() error: %v", err)
	}
	if w.ID != 2 {
		t.Fatalf("picked %d, want 2", w.ID)
	}
}

func TestPalette_EmptySelectionCancels(t *testing.T) {
	p, err := newPalette("wofi", allFound)
	if err != nil {
		t.Fatal(err)
	}
	p.run = func(string, []string, string) (string, error) { return "\n", nil }
	if _, err := p.Pick(testWindows); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestPalette_IndexOutOfRange(t *testing.T) {
	p, err := newPalette("rofi", allFound)
	if err != nil {
		t.Fatal(err)
	}
	p.run = func(string, []string, string) (string, error) { return "7", nil }
	if _, err := p.Pick(testWindows); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runKeys(m tea.Model, keys ...string) listModel {
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m.(listModel)
}

func TestListModel(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		chosen int
	}{
		{name: "enter selects first", keys: []string{"enter"}, chosen: 0},
		{name: "down then enter", keys: []string{"down", "down", "enter"}, chosen: 2},
		{name: "q cancels", keys: []string{"q"}, chosen: -1},
		{name: "esc cancels", keys: []string{"esc"}, chosen: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := runKeys(newListModel(testWindows), tt.keys...)
			if m.chosen != tt.chosen {
				t.Fatalf("chosen = %d, want %d", m.chosen, tt.chosen)
			}
		})
	}
}

func TestListModel_View(t *testing.T) {
	m := runKeys(newListModel(testWindows))
	view := m.View()
	if !strings.Contains(view, "Terminal") || !strings.Contains(view, "800x600 at (0,0)") {
		t.Fatalf("view missing window rows:\n%s", view)
	}
}

func TestNew(t *testing.T) {
	if _, ok := mustNew(t, "terminal").(*Terminal); !ok {
		t.Error("terminal picker type")
	}
	if _, ok := mustNew(t, "").(*Terminal); !ok {
		t.Error("default picker type")
	}
	if _, ok := mustNew(t, "tui").(*TUI); !ok {
		t.Error("tui picker type")
	}
}

func mustNew(t *testing.T, name string) Picker {
	t.Helper()
	p, err := New(name)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return p
}
