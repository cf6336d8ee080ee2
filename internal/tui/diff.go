package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xseat/internal/config"
)

var (
	oldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	newStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// settingChange is one config key whose value differs. An empty Old or New
// means the key is not rendered on that side (an omitted zero value).
type settingChange struct {
	Path string
	Old  string
	New  string
}

// configChanges lists the keys that differ between before and after, in the
// order they appear in the rendered file.
func configChanges(before, after *config.Config) ([]settingChange, error) {
	oldValues, oldOrder, err := flattenConfig(before)
	if err != nil {
		return nil, err
	}
	newValues, newOrder, err := flattenConfig(after)
	if err != nil {
		return nil, err
	}

	var changes []settingChange
	for _, path := range newOrder {
		if oldValues[path] != newValues[path] {
			changes = append(changes, settingChange{Path: path, Old: oldValues[path], New: newValues[path]})
		}
	}
	for _, path := range oldOrder {
		if _, ok := newValues[path]; !ok {
			changes = append(changes, settingChange{Path: path, Old: oldValues[path]})
		}
	}
	return changes, nil
}

// flattenConfig renders cfg and maps each dotted key path to its scalar
// value.
func flattenConfig(cfg *config.Config) (map[string]string, []string, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return nil, nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse rendered config: %w", err)
	}

	values := map[string]string{}
	var order []string
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(c, prefix)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := n.Content[i].Value
				if prefix != "" {
					key = prefix + "." + key
				}
				walk(n.Content[i+1], key)
			}
		default:
			values[prefix] = n.Value
			order = append(order, prefix)
		}
	}
	walk(&doc, "")
	return values, order, nil
}

func renderChanges(changes []settingChange) string {
	width := 0
	for _, c := range changes {
		width = max(width, len(c.Path))
	}
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, fmt.Sprintf("  %s  %s -> %s",
			pathStyle.Render(fmt.Sprintf("%-*s", width, c.Path)),
			oldStyle.Render(shownValue(c.Old)),
			newStyle.Render(shownValue(c.New))))
	}
	return strings.Join(lines, "\n")
}

func shownValue(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
