package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(ctx, s.drv)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_request_events", "attempt_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendAttempt(ctx, AttemptEventData{QuizID: "q", Topic: "t", Score: 1, Total: 5, Percentage: 20, Band: "low"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	records, err := s.EventRepo().QueryAttempts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("attempts after reopen = %d, want 1", len(records))
	}
}

func TestLLMEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Purpose:      "quiz-gen",
		InputTokens:  120,
		OutputTokens: 480,
		LatencyMs:    900,
		Success:      false,
		ErrorMessage: "invalid response",
		RequestBody:  "[user]\nCreate a quiz about: volcanoes",
		ResponseBody: "not json",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	got, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event")
	}
	if got.Success {
		t.Error("success = true, want false")
	}
	if got.ResponseBody != "not json" {
		t.Errorf("response body = %q", got.ResponseBody)
	}
	if got.Purpose != "quiz-gen" || got.InputTokens != 120 || got.OutputTokens != 480 {
		t.Errorf("unexpected record: %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp too old: %v", got.Timestamp)
	}
}

func TestGetLLMEventMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.EventRepo().GetLLMEvent(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestQueryLLMEventsNewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, model := range []string{"a", "b", "c"} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: model, Purpose: "quiz-gen", Success: true}); err != nil {
			t.Fatalf("append %s: %v", model, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Model != "c" || events[1].Model != "b" {
		t.Errorf("order = %s,%s, want c,b", events[0].Model, events[1].Model)
	}

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: events[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].Model != "c" {
		t.Errorf("after filter returned %+v", after)
	}
}

func TestQueryLLMEventsByPurpose(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"quiz-gen", "connectivity-check", "quiz-gen", "connectivity-check"} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: purpose, Success: true}); err != nil {
			t.Fatalf("append %s: %v", purpose, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-gen", Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Purpose != "quiz-gen" {
		t.Fatalf("events = %+v, want one quiz-gen event", events)
	}
	if events[0].Sequence != 3 {
		t.Errorf("sequence = %d, want newest quiz-gen event (3)", events[0].Sequence)
	}
}

func TestMigrationCreatesIndexes(t *testing.T) {
	s := openTestStore(t)

	for _, index := range []string{"llmrequestevent_purpose", "attemptevent_quiz_id"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", index,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %s: %v", index, err)
		}
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	calls := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", InputTokens: 100, OutputTokens: 200, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", InputTokens: 50, OutputTokens: 100, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-flash", Purpose: "quiz-gen", InputTokens: 10, OutputTokens: 20, LatencyMs: 200, Success: false},
	}
	for _, c := range calls {
		if err := repo.AppendLLMRequest(ctx, c); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 1 {
		t.Fatalf("purposes = %d, want 1", len(byPurpose))
	}
	p := byPurpose[0]
	if p.Calls != 3 || p.InputTokens != 160 || p.OutputTokens != 320 || p.AvgLatencyMs != 200 {
		t.Errorf("unexpected purpose stats: %+v", p)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("models = %d, want 2", len(byModel))
	}
	if byModel[0].Model != "gemini-flash" || byModel[0].Failures != 1 || byModel[1].Calls != 2 || byModel[1].Failures != 0 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestAttemptStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	attempts := []AttemptEventData{
		{QuizID: "quiz_1", Topic: "volcanoes", Score: 5, Total: 5, Percentage: 100, Band: "high"},
		{QuizID: "quiz_1", Topic: "volcanoes", Score: 3, Total: 5, Percentage: 60, Band: "medium", Retake: true},
		{QuizID: "quiz_2", Topic: "tides", Score: 2, Total: 5, Percentage: 40, Band: "low"},
	}
	for _, a := range attempts {
		if err := repo.AppendAttempt(ctx, a); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	stats, err := repo.AttemptStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Attempts != 3 || stats.Quizzes != 2 || stats.BestPercent != 100 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.AvgPercentage < 66 || stats.AvgPercentage > 67 {
		t.Errorf("avg = %v, want ~66.7", stats.AvgPercentage)
	}
	if stats.ByBand["medium"] != 1 || stats.ByBand["high"] != 1 || stats.ByBand["low"] != 1 {
		t.Errorf("by band = %v", stats.ByBand)
	}

	records, err := repo.QueryAttempts(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].QuizID != "quiz_2" {
		t.Errorf("latest attempt = %+v", records)
	}
}

func TestEventsShareGlobalSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := repo.AppendAttempt(ctx, AttemptEventData{QuizID: "q", Topic: "t", Total: 5, Band: "low"}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}

	llmEvents, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	attempts, _ := repo.QueryAttempts(ctx, QueryOpts{})
	if len(llmEvents) != 1 || len(attempts) != 1 {
		t.Fatalf("llm=%d attempts=%d", len(llmEvents), len(attempts))
	}
	if attempts[0].Sequence <= llmEvents[0].Sequence {
		t.Errorf("attempt sequence %d should follow llm sequence %d", attempts[0].Sequence, llmEvents[0].Sequence)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "quiz-gen"})
	_ = repo.AppendAttempt(ctx, AttemptEventData{QuizID: "q", Topic: "t", Total: 5, Band: "low"})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	llmEvents, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	stats, _ := repo.AttemptStats(ctx)
	if len(llmEvents) != 0 || stats.Attempts != 0 {
		t.Errorf("expected empty store, got llm=%d attempts=%d", len(llmEvents), stats.Attempts)
	}
}
