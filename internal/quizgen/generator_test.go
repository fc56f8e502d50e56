package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizgen/internal/llm"
)

func validQuizJSON(t *testing.T) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(map[string]any{"questions": sampleQuiz().Questions})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON(t)})
	gen := New(mock, DefaultConfig())

	quiz, err := gen.Generate(context.Background(), "  the solar system \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.Topic != "the solar system" {
		t.Errorf("topic = %q, want trimmed", quiz.Topic)
	}
	if len(quiz.Questions) != QuestionCount {
		t.Fatalf("questions = %d, want %d", len(quiz.Questions), QuestionCount)
	}
	if !strings.HasPrefix(quiz.ID, "quiz_") {
		t.Errorf("id = %q, want quiz_ prefix", quiz.ID)
	}
	if quiz.CreatedAt.IsZero() || quiz.CreatedAt.Location() != time.UTC {
		t.Errorf("createdAt = %v", quiz.CreatedAt)
	}

	req := mock.LastRequest()
	if req.System != systemPrompt {
		t.Error("expected fixed system prompt")
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "Create a quiz about: the solar system" {
		t.Errorf("messages = %+v", req.Messages)
	}
	if req.MaxTokens != 2000 || req.Temperature != 0.7 {
		t.Errorf("params = %d / %v", req.MaxTokens, req.Temperature)
	}
	if req.Schema != QuizSchema {
		t.Error("expected quiz schema on request")
	}
}

func TestGenerate_UniqueIDs(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: validQuizJSON(t)},
		llm.MockResponse{Content: validQuizJSON(t)},
	)
	gen := New(mock, DefaultConfig())

	a, err := gen.Generate(context.Background(), "tides")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := gen.Generate(context.Background(), "tides")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids should differ, both %q", a.ID)
	}
}

func TestGenerate_WhitespaceTopic(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON(t)})
	gen := New(mock, DefaultConfig())

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := gen.Generate(context.Background(), topic)
		if KindOf(err) != KindInvalidInput {
			t.Fatalf("topic %q: kind = %v, want invalid_input", topic, KindOf(err))
		}
	}
	if mock.CallCount() != 0 {
		t.Fatalf("provider called %d times, want 0", mock.CallCount())
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	reason := &llm.ErrNotConfigured{Provider: "openai", EnvVar: "QUIZGEN_OPENAI_API_KEY"}
	gen := Unconfigured(reason)

	_, err := gen.Generate(context.Background(), "tides")
	if KindOf(err) != KindNotConfigured {
		t.Fatalf("kind = %v, want not_configured", KindOf(err))
	}
	var nc *llm.ErrNotConfigured
	if !errors.As(err, &nc) {
		t.Fatalf("expected wrapped ErrNotConfigured, got %v", err)
	}

	// Topic validation still comes first.
	_, err = gen.Generate(context.Background(), " ")
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("kind = %v, want invalid_input", KindOf(err))
	}
}

func TestGenerate_NilProvider(t *testing.T) {
	_, err := New(nil, DefaultConfig()).Generate(context.Background(), "tides")
	if KindOf(err) != KindNotConfigured {
		t.Fatalf("kind = %v, want not_configured", KindOf(err))
	}
}

func TestGenerate_NonJSONReply(t *testing.T) {
	reply := "Sure! Here is a fun quiz about tides."
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), "tides")
	if KindOf(err) != KindMalformedResponse {
		t.Fatalf("kind = %v, want malformed_response", KindOf(err))
	}
	if strings.Contains(MessageOf(err), reply) {
		t.Fatal("user message must not echo the raw reply")
	}
}

func TestGenerate_TrailingGarbage(t *testing.T) {
	content := append(validQuizJSON(t), []byte(" and more")...)
	mock := llm.NewMockProvider(llm.MockResponse{Content: content})

	_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
	if KindOf(err) != KindMalformedResponse {
		t.Fatalf("kind = %v, want malformed_response", KindOf(err))
	}
}

func TestGenerate_StructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rule    string
	}{
		{"four questions", `{"questions":[` + strings.Repeat(`{"id":"x","question":"Q","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"A"},`, 3) + `{"question":"Q","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"A"}]}`, "count"},
		{"wrong top level", `{"quiz":[]}`, "questions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
			if KindOf(err) != KindStructural {
				t.Fatalf("kind = %v, want structural (%v)", KindOf(err), err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Rule != tt.rule {
				t.Fatalf("expected rule %q, got %v", tt.rule, err)
			}
		})
	}
}

func TestGenerate_ProviderRejectedReplyIsRevalidated(t *testing.T) {
	t.Run("unparseable", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{
			Err: &llm.ErrInvalidResponse{Content: json.RawMessage(`{"questions": [`), Err: errors.New("invalid JSON")},
		})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
		if KindOf(err) != KindMalformedResponse {
			t.Fatalf("kind = %v, want malformed_response", KindOf(err))
		}
	})

	t.Run("wrong shape", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{
			Err: &llm.ErrInvalidResponse{Content: json.RawMessage(`{"questions": []}`), Err: errors.New("schema validation failed")},
		})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
		if KindOf(err) != KindStructural {
			t.Fatalf("kind = %v, want structural", KindOf(err))
		}
	})

	t.Run("passes local rules", func(t *testing.T) {
		// Provider schema checks can be stricter than the local rules.
		mock := llm.NewMockProvider(llm.MockResponse{
			Err: &llm.ErrInvalidResponse{Content: validQuizJSON(t), Err: errors.New("schema validation failed")},
		})
		quiz, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(quiz.Questions) != QuestionCount {
			t.Fatalf("questions = %d", len(quiz.Questions))
		}
	})

	t.Run("empty", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{
			Err: &llm.ErrInvalidResponse{Err: errors.New("no choices")},
		})
		_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
		if KindOf(err) != KindMalformedResponse {
			t.Fatalf("kind = %v, want malformed_response", KindOf(err))
		}
	})
}

func TestGenerate_TruncatedReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[{"id":"1"`), Truncated: true})
	_, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
	if KindOf(err) != KindMalformedResponse {
		t.Fatalf("kind = %v, want malformed_response", KindOf(err))
	}
}

func TestGenerate_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}},
		{"rate limited", &llm.ErrRateLimit{Err: errors.New("429")}},
		{"deadline", context.DeadlineExceeded},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Err: tt.err})
			quiz, err := New(mock, DefaultConfig()).Generate(context.Background(), "tides")
			if quiz != nil {
				t.Fatal("expected no quiz on failure")
			}
			if KindOf(err) != KindUpstream {
				t.Fatalf("kind = %v, want upstream", KindOf(err))
			}
			if KindOf(err).Class() != ClassServer {
				t.Fatal("upstream should be server class")
			}
		})
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(mock, DefaultConfig()).Generate(ctx, "tides")
	if KindOf(err) != KindUpstream {
		t.Fatalf("kind = %v, want upstream", KindOf(err))
	}
}

func TestKindClass(t *testing.T) {
	tests := []struct {
		kind Kind
		want Class
	}{
		{KindInvalidInput, ClassClient},
		{KindNotConfigured, ClassMisconfigured},
		{KindUpstream, ClassServer},
		{KindMalformedResponse, ClassServer},
		{KindStructural, ClassServer},
		{KindUnknown, ClassServer},
	}
	for _, tt := range tests {
		if got := tt.kind.Class(); got != tt.want {
			t.Errorf("%v.Class() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("x")) != KindUnknown {
		t.Fatal("expected unknown kind")
	}
	if MessageOf(errors.New("secret detail")) == "secret detail" {
		t.Fatal("foreign errors must not leak their text")
	}
}

func TestParseReply(t *testing.T) {
	questions, err := ParseReply(validQuizJSON(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("questions = %d, want %d", len(questions), QuestionCount)
	}

	if _, err := ParseReply([]byte("Sure! Here is your quiz:")); KindOf(err) != KindMalformedResponse {
		t.Errorf("prose reply: kind = %v, want malformed", KindOf(err))
	}
	if _, err := ParseReply([]byte(`{"questions":[]}`)); KindOf(err) != KindStructural {
		t.Errorf("empty list: kind = %v, want structural", KindOf(err))
	}
}

func TestTopicFromTranscript(t *testing.T) {
	transcript := "[system]\n" + systemPrompt + "\n\n[user]\n" + buildUserMessage("tide pools") + "\n\n[params: max_tokens=2000 temperature=0.70]\n"
	if got := TopicFromTranscript(transcript); got != "tide pools" {
		t.Errorf("topic = %q, want %q", got, "tide pools")
	}
	if got := TopicFromTranscript("[user]\nhello\n"); got != "" {
		t.Errorf("topic = %q, want empty", got)
	}
}
