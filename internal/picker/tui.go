package picker

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/xseat/internal/platform"
)

var (
	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
)

// TUI is a full-screen filterable window list.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

// NewTUI returns a list picker bound to stdin/stdout.
func NewTUI() *TUI {
	return &TUI{In: os.Stdin, Out: os.Stdout}
}

// Pick runs the list until a window is chosen or the user quits.
func (t *TUI) Pick(windows []platform.Window) (platform.Window, error) {
	if len(windows) == 0 {
		return platform.Window{}, fmt.Errorf("no windows to choose from")
	}
	if f, ok := t.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return platform.Window{}, fmt.Errorf("window picker requires an interactive terminal on stdin")
	}

	p := tea.NewProgram(newListModel(windows),
		tea.WithAltScreen(),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
	)
	final, err := p.Run()
	if err != nil {
		return platform.Window{}, fmt.Errorf("window picker failed: %w", err)
	}
	m, ok := final.(listModel)
	if !ok || m.chosen < 0 {
		return platform.Window{}, ErrCancelled
	}
	return windows[m.chosen], nil
}

// windowItem implements list.DefaultItem.
type windowItem struct {
	index int
	win   platform.Window
}

func (i windowItem) Title() string {
	if i.win.Name == "" {
		return fmt.Sprintf("0x%x", uint32(i.win.ID))
	}
	return i.win.Name
}

func (i windowItem) Description() string {
	return fmt.Sprintf("%dx%d at (%d,%d)  id 0x%x", i.win.Width, i.win.Height, i.win.X, i.win.Y, uint32(i.win.ID))
}

func (i windowItem) FilterValue() string { return i.win.Name }

type listModel struct {
	list   list.Model
	chosen int
}

func newListModel(windows []platform.Window) listModel {
	items := make([]list.Item, len(windows))
	for i, w := range windows {
		items[i] = windowItem{index: i, win: w}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a window"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.DisableQuitKeybindings()

	return listModel{list: l, chosen: -1}
}

// Init implements tea.Model.
func (m listModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Keys belong to the filter input while it is open.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc":
			if m.list.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(windowItem); ok {
				m.chosen = item.index
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m listModel) View() string {
	return docStyle.Render(m.list.View())
}
