package components

import (
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling.
type TextInput struct {
	Model    textinput.Model
	MaxChars int
	invalid  bool
}

// NewTextInput creates a focused text input limited to maxChars runes.
func NewTextInput(placeholder string, maxChars int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxChars > 0 {
		ti.CharLimit = maxChars
	}

	return TextInput{
		Model:    ti,
		MaxChars: maxChars,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Any edit clears the invalid marker.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		t.invalid = false
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.invalid {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Len returns the number of runes entered.
func (t TextInput) Len() int {
	return utf8.RuneCountInString(t.Model.Value())
}

// MarkInvalid flags the current value as rejected.
func (t *TextInput) MarkInvalid() {
	t.invalid = true
}

// SetValue replaces the current value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}
