package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/ui/theme"
)

// Choice is one labeled option.
type Choice struct {
	Key  string
	Text string
}

// MultiChoice renders a question with labeled options. It holds no state of
// its own; the caller passes the chosen key and, after grading, the correct one.
type MultiChoice struct {
	Question string
	Choices  []Choice

	// Chosen is the selected key, or "" when nothing is selected.
	Chosen string

	// Correct, when set, switches to graded rendering.
	Correct string
}

// NewMultiChoice creates a new multiple-choice view.
func NewMultiChoice(question string, choices []Choice, chosen string) MultiChoice {
	return MultiChoice{
		Question: question,
		Choices:  choices,
		Chosen:   chosen,
	}
}

// Graded returns a copy that highlights correct as the right answer.
func (m MultiChoice) Graded(correct string) MultiChoice {
	m.Correct = correct
	return m
}

// View renders the multiple-choice component wrapped to width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder

	questionStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if width > 0 {
		questionStyle = questionStyle.Width(width)
	}
	b.WriteString(questionStyle.Render(m.Question))
	b.WriteString("\n\n")

	for _, c := range m.Choices {
		prefix := "  "
		if c.Key == m.Chosen {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, c.Key, c.Text)

		var style lipgloss.Style
		switch {
		case m.Correct != "" && c.Key == m.Correct:
			style = theme.Correct
		case m.Correct != "" && c.Key == m.Chosen:
			style = theme.Incorrect
		case m.Correct != "":
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case c.Key == m.Chosen:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
