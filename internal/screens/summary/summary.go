// Package summary renders the result of a submitted quiz.
package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/results"
	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/session"
	"github.com/abhisek/quizgen/internal/store"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// attemptSavedMsg reports the outcome of persisting the attempt.
type attemptSavedMsg struct {
	Err error
}

// RetakeFunc builds the screen for a fresh attempt at the same quiz.
type RetakeFunc func(*session.Session) screen.Screen

// SummaryScreen displays the score, band and per-question breakdown.
type SummaryScreen struct {
	completed *session.Completed
	result    results.Result
	eventRepo store.EventRepo
	retake    RetakeFunc
	menu      components.Menu
	offset    int
	saveErr   string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for a completed attempt. eventRepo may be nil.
func New(completed *session.Completed, eventRepo store.EventRepo, retake RetakeFunc) *SummaryScreen {
	s := &SummaryScreen{
		completed: completed,
		result:    results.Summarize(completed.Quiz, completed.Answers, completed.Score),
		eventRepo: eventRepo,
		retake:    retake,
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Retake Quiz", Action: s.retakeCmd},
		{Label: "New Quiz", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopToRootMsg{} }
		}},
	})
	return s
}

// Result returns the computed result.
func (s *SummaryScreen) Result() results.Result {
	return s.result
}

func (s *SummaryScreen) retakeCmd() tea.Cmd {
	next := s.retake(session.Retake(s.completed))
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.eventRepo == nil {
		return nil
	}
	data := store.AttemptEventData{
		QuizID:     s.completed.Quiz.ID,
		Topic:      s.completed.Quiz.Topic,
		Score:      s.result.Score,
		Total:      s.result.Total,
		Percentage: s.result.Percentage,
		Band:       string(s.result.Band),
		Retake:     s.completed.Retake,
	}
	repo := s.eventRepo
	return func() tea.Msg {
		return attemptSavedMsg{Err: repo.AppendAttempt(context.Background(), data)}
	}
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Topics"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptSavedMsg:
		if msg.Err != nil {
			s.saveErr = "attempt not saved: " + msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
			return s, nil
		case "down", "j":
			s.offset++
			return s, nil
		case "r":
			return s, s.retakeCmd()
		case "left", "right", "h", "l", "tab", "enter":
			var cmd tea.Cmd
			s.menu, cmd = s.menu.Update(msg)
			return s, cmd
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	bandColor := theme.BandColor(string(r.Band))

	var head strings.Builder
	head.WriteString("\n")
	head.WriteString(layout.Centered(
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("You scored %d / %d", r.Score, r.Total)),
		width, theme.Text))
	head.WriteString("\n")
	head.WriteString(layout.Centered(
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d%%  %s", r.Percentage, r.Message())),
		width, bandColor))
	head.WriteString("\n\n")

	bar := components.ProgressBar{
		Percent: float64(r.Percentage) / 100,
		Width:   min(50, width-4),
		Fill:    bandColor,
	}
	head.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	head.WriteString("\n\n")

	var foot strings.Builder
	foot.WriteString("\n")
	foot.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.ViewInline()))
	if s.saveErr != "" {
		foot.WriteString("\n")
		foot.WriteString(layout.Centered(s.saveErr, width, theme.TextDim))
	}

	// The breakdown scrolls between the fixed header and the menu.
	lines := strings.Split(s.breakdown(width), "\n")
	avail := height - lipgloss.Height(head.String()) - lipgloss.Height(foot.String())
	if avail < 1 {
		avail = 1
	}
	maxOffset := len(lines) - avail
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	end := s.offset + avail
	if end > len(lines) {
		end = len(lines)
	}

	return head.String() + strings.Join(lines[s.offset:end], "\n") + foot.String()
}

// breakdown renders one block per question.
func (s *SummaryScreen) breakdown(width int) string {
	inner := min(width-8, 90)
	if inner < 20 {
		inner = 20
	}
	pad := lipgloss.NewStyle().PaddingLeft((width - inner) / 2)

	var b strings.Builder
	for i, qr := range s.result.Questions {
		mark := theme.Correct.Render("✓")
		if !qr.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		title := lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Bold(true).
			Render(fmt.Sprintf("%s %d. %s", mark, i+1, qr.Question.Question))
		b.WriteString(pad.Render(title))
		b.WriteString("\n")

		b.WriteString(pad.Render(answerLine(qr)))
		b.WriteString("\n")

		if qr.Question.Explanation != "" {
			expl := lipgloss.NewStyle().Width(inner).Foreground(theme.TextDim).Italic(true).
				Render(qr.Question.Explanation)
			b.WriteString(pad.Render(expl))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func answerLine(qr results.QuestionResult) string {
	correct := qr.Question.CorrectAnswer
	correctText := fmt.Sprintf("%s) %s", correct, qr.Question.Options.Get(correct))

	if qr.Correct {
		return "   " + theme.Correct.Render("Your answer: "+correctText)
	}
	yours := "no answer"
	if qr.Answered {
		yours = fmt.Sprintf("%s) %s", qr.Selected, qr.Question.Options.Get(qr.Selected))
	}
	return "   " + theme.Incorrect.Render("Your answer: "+yours) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("   Correct: ") +
		theme.Correct.Render(correctText)
}
