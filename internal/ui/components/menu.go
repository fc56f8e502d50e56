package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the given items.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k", "left", "h":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j", "right", "l", "tab":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// View renders the menu as a vertical list.
func (m Menu) View() string {
	var s string
	for i, item := range m.Items {
		s += m.render(i, item) + "\n"
	}
	return s
}

// ViewInline renders the items on one line, for button rows.
func (m Menu) ViewInline() string {
	parts := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		if i == m.Selected {
			parts = append(parts, theme.ButtonActive.Render(item.Label))
		} else {
			parts = append(parts, theme.ButtonInactive.Render(item.Label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Menu) render(i int, item MenuItem) string {
	switch {
	case item.Disabled:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + item.Label)
	case i == m.Selected:
		return theme.Selected.Render("  ▸ " + item.Label)
	}
	return theme.Unselected.Render("    " + item.Label)
}
