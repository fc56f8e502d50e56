package components

import (
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// Button is a styled, non-interactive button label. Screens own the key
// that triggers it.
type Button struct {
	Label  string
	Hotkey string
	Active bool
}

// NewButton creates a new button.
func NewButton(label, hotkey string, active bool) Button {
	return Button{
		Label:  label,
		Hotkey: hotkey,
		Active: active,
	}
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Hotkey != "" {
		label = "[" + b.Hotkey + "] " + label
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
