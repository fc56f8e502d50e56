package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/store"
)

type mockRepo struct {
	store.EventRepo
	attempts []store.AttemptRecord
	err      error
}

func (m *mockRepo) QueryAttempts(context.Context, store.QueryOpts) ([]store.AttemptRecord, error) {
	return m.attempts, m.err
}

func (m *mockRepo) AttemptStats(context.Context) (store.AttemptStats, error) {
	return store.AttemptStats{Attempts: len(m.attempts), Quizzes: 1, AvgPercentage: 70, BestPercent: 80,
		ByBand: map[string]int{"high": 1, "medium": 1}}, nil
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestHistory_Lists(t *testing.T) {
	repo := &mockRepo{attempts: []store.AttemptRecord{
		{ID: 2, Timestamp: time.Now(), AttemptEventData: store.AttemptEventData{Topic: "Rivers", Score: 4, Total: 5, Percentage: 80, Band: "high", Retake: true}},
		{ID: 1, Timestamp: time.Now(), AttemptEventData: store.AttemptEventData{Topic: "Rivers", Score: 3, Total: 5, Percentage: 60, Band: "medium"}},
	}}
	s := New(repo)
	load(t, s)

	view := s.View(100, 30)
	for _, want := range []string{"Rivers", "4/5", "(retake)", "2 attempts", "best 80%", "high 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want clamp at 1", s.selected)
	}
}

func TestHistory_Empty(t *testing.T) {
	s := New(&mockRepo{})
	if !strings.Contains(s.View(100, 30), "Loading") {
		t.Error("expected loading state before Init completes")
	}
	load(t, s)
	if !strings.Contains(s.View(100, 30), "No quizzes taken yet.") {
		t.Error("expected empty state")
	}
}

func TestHistory_Error(t *testing.T) {
	s := New(&mockRepo{err: errors.New("db locked")})
	load(t, s)
	if !strings.Contains(s.View(100, 30), "db locked") {
		t.Error("expected error message")
	}
}

func TestHistory_Back(t *testing.T) {
	s := New(&mockRepo{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
}
