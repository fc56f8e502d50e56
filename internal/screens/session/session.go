// Package session is the quiz-taking screen.
package session

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/screens/summary"
	sess "github.com/abhisek/quizgen/internal/session"
	"github.com/abhisek/quizgen/internal/store"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// SessionScreen lets the user answer, navigate and submit one quiz attempt.
type SessionScreen struct {
	state       *sess.Session
	eventRepo   store.EventRepo
	notice      string
	confirmQuit bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// New creates a SessionScreen over state. eventRepo may be nil.
func New(state *sess.Session, eventRepo store.EventRepo) *SessionScreen {
	return &SessionScreen{state: state, eventRepo: eventRepo}
}

// Session exposes the underlying state machine.
func (s *SessionScreen) Session() *sess.Session {
	return s.state
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	if s.state.IsRetake() {
		return s.state.Quiz().Topic + " (retake)"
	}
	return s.state.Quiz().Topic
}

// HandlesBack asks for confirmation once any answer has been recorded.
func (s *SessionScreen) HandlesBack() bool {
	return s.state.AnsweredCount() > 0
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "1-5", Description: "Jump"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()

	if s.confirmQuit {
		switch strings.ToLower(key) {
		case "y":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	s.notice = ""

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil

	case "a", "b", "c", "d", "A", "B", "C", "D":
		return s.choose(quizgen.OptionKey(strings.ToUpper(key)))

	case "n", "right", "l", "enter":
		if !s.state.MoveNext() {
			if _, answered := s.state.CurrentAnswer(); !answered {
				s.notice = "Choose an answer to continue."
			} else if s.state.IsLast() && s.state.AllAnswered() {
				s.notice = "All answered. Press S to submit."
			}
		}
		return s, nil

	case "p", "left", "h":
		s.state.MovePrevious()
		return s, nil

	case "s", "S":
		return s.submit()
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if err := s.state.JumpTo(int(key[0] - '1')); err != nil {
			s.notice = fmt.Sprintf("There are only %d questions.", s.state.Count())
		}
	}
	return s, nil
}

func (s *SessionScreen) choose(key quizgen.OptionKey) (screen.Screen, tea.Cmd) {
	if err := s.state.SelectCurrent(key); err != nil {
		s.notice = err.Error()
	}
	return s, nil
}

func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	completed, err := s.state.Submit()
	if err != nil {
		if errors.Is(err, sess.ErrIncompleteAnswers) {
			s.notice = fmt.Sprintf("Answer every question before submitting (%d of %d answered).",
				s.state.AnsweredCount(), s.state.Count())
		} else {
			s.notice = err.Error()
		}
		return s, nil
	}

	repo := s.eventRepo
	next := summary.New(completed, repo, func(retake *sess.Session) screen.Screen {
		return New(retake, repo)
	})
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SessionScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width, height, s.state.AnsweredCount())
	}

	var b strings.Builder
	q := s.state.Current()

	// Progress line.
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render("  " + s.state.Progress())
	bar := components.NewProgressBar("Answered", s.state.AnsweredCount(), s.state.Count(), 36)
	line := left
	if gap := width - lipgloss.Width(left) - lipgloss.Width(bar.View()) - 2; gap > 0 {
		line += strings.Repeat(" ", gap) + bar.View()
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-2, 0))))
	b.WriteString("\n\n")

	// Question and options.
	chosen, _ := s.state.CurrentAnswer()
	choices := make([]components.Choice, 0, len(quizgen.Keys))
	for _, k := range quizgen.Keys {
		choices = append(choices, components.Choice{Key: string(k), Text: q.Options.Get(k)})
	}
	inner := min(width-8, 90)
	mc := components.NewMultiChoice(q.Question, choices, string(chosen))
	b.WriteString(lipgloss.NewStyle().PaddingLeft((width - inner) / 2).Render(mc.View(inner)))
	b.WriteString("\n")

	// Question dots.
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderDots()))
	b.WriteString("\n\n")

	// Navigation buttons.
	buttons := []string{
		components.NewButton("Prev", "←", !s.state.IsFirst()).View(),
		components.NewButton("Next", "→", s.state.CanMoveNext()).View(),
		components.NewButton("Submit", "S", s.state.AllAnswered()).View(),
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Center, buttons[0], "  ", buttons[1], "  ", buttons[2])))

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(s.notice, width, theme.Accent))
	}

	return b.String()
}

// renderDots shows one marker per question: filled when answered, bracketed
// for the current one.
func (s *SessionScreen) renderDots() string {
	parts := make([]string, 0, s.state.Count())
	for i, q := range s.state.Quiz().Questions {
		mark := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if _, ok := s.state.Answer(q.ID); ok {
			mark = "●"
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		if i == s.state.Index() {
			mark = "[" + mark + "]"
			style = style.Bold(true)
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d%s", i+1, mark)))
	}
	return strings.Join(parts, " ")
}

func renderQuitConfirm(width, height, answered int) string {
	content := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render("Leave this quiz?") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("Your %d answer(s) will be lost.", answered)) + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Accent).Render("Y") + " leave   " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render("N") + " keep going"

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(content))
}
