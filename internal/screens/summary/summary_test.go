package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/session"
	"github.com/abhisek/quizgen/internal/store"
)

type failingRepo struct {
	store.EventRepo
}

func (failingRepo) AppendAttempt(context.Context, store.AttemptEventData) error {
	return errors.New("disk full")
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "" }
func (s *stubScreen) Title() string                          { return "stub" }

func completed(t *testing.T, correct int) *session.Completed {
	t.Helper()
	q := &quizgen.Quiz{ID: "quiz_sum", Topic: "Bridges"}
	for i := 0; i < 5; i++ {
		q.Questions = append(q.Questions, quizgen.Question{
			ID:            string(rune('1' + i)),
			Question:      "Which bridge type uses cables?",
			Options:       quizgen.Options{A: "Suspension", B: "Beam", C: "Arch", D: "Truss"},
			CorrectAnswer: quizgen.OptionA,
			Explanation:   "Suspension bridges hang the deck from cables.",
		})
	}
	s := session.New(q)
	for i, qq := range q.Questions {
		key := quizgen.OptionA
		if i >= correct {
			key = quizgen.OptionB
		}
		if err := s.SelectAnswer(qq.ID, key); err != nil {
			t.Fatal(err)
		}
	}
	c, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func retakeStub(*session.Session) screen.Screen { return &stubScreen{} }

func TestSummaryScreen_Title(t *testing.T) {
	s := New(completed(t, 5), nil, retakeStub)
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	tests := []struct {
		correct int
		want    []string
	}{
		{5, []string{"You scored 5 / 5", "100%", "Excellent! Great job!"}},
		{3, []string{"You scored 3 / 5", "60%", "Good work! Keep learning!"}},
		{2, []string{"You scored 2 / 5", "40%", "Keep practicing! You'll get better!"}},
	}
	for _, tt := range tests {
		view := New(completed(t, tt.correct), nil, retakeStub).View(100, 60)
		for _, w := range tt.want {
			if !strings.Contains(view, w) {
				t.Errorf("%d correct: view missing %q", tt.correct, w)
			}
		}
	}
}

func TestSummaryScreen_Breakdown(t *testing.T) {
	view := New(completed(t, 4), nil, retakeStub).View(100, 60)
	if !strings.Contains(view, "Your answer: B) Beam") {
		t.Error("expected the wrong answer to be shown")
	}
	if !strings.Contains(view, "Suspension bridges hang") {
		t.Error("expected explanation text")
	}
}

func TestSummaryScreen_NoRepoNoInit(t *testing.T) {
	if New(completed(t, 1), nil, retakeStub).Init() != nil {
		t.Error("without a repo there is nothing to persist")
	}
}

func TestSummaryScreen_SaveFailureIsShown(t *testing.T) {
	s := New(completed(t, 1), failingRepo{}, retakeStub)
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 60), "attempt not saved") {
		t.Error("expected save failure note")
	}
}

func TestSummaryScreen_Menu(t *testing.T) {
	s := New(completed(t, 3), nil, retakeStub)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatal("first item should retake")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Fatal("second item should return to the topic screen")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(completed(t, 3), nil, retakeStub)
	if len(s.KeyHints()) == 0 {
		t.Error("expected key hints")
	}
}
