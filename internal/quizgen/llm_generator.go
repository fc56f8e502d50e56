package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizgen/internal/llm"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config

	// configErr explains why provider is nil.
	configErr error

	now func() time.Time
}

// New creates a new LLMGenerator with the given provider and config.
// A nil provider yields a generator whose calls fail with KindNotConfigured.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, now: time.Now}
}

// Unconfigured returns a generator that rejects every valid topic with
// KindNotConfigured, wrapping reason. Invalid topics are still reported
// as KindInvalidInput.
func Unconfigured(reason error) *LLMGenerator {
	g := New(nil, DefaultConfig())
	g.configErr = reason
	return g
}

// Generate produces a Quiz for topic.
func (g *LLMGenerator) Generate(ctx context.Context, topic string) (*Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &Error{Kind: KindInvalidInput, Message: "topic is required"}
	}

	if g.provider == nil {
		return nil, &Error{
			Kind:    KindNotConfigured,
			Message: "quiz generation is not configured: missing API key",
			Err:     g.configErr,
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(topic)},
		},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var content json.RawMessage
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		content, err = recoverContent(ctx, err)
		if err != nil {
			return nil, err
		}
	} else {
		content = resp.Content
	}

	questions, err := ParseReply(content)
	if err != nil {
		return nil, err
	}

	return &Quiz{
		ID:        newQuizID(),
		Topic:     topic,
		Questions: questions,
		CreatedAt: g.now().UTC(),
	}, nil
}

// recoverContent classifies a provider error. Replies the provider rejected
// against its schema are handed back for local parsing and validation,
// since the local rules decide between malformed and structural.
func recoverContent(ctx context.Context, err error) (json.RawMessage, error) {
	var notConfigured *llm.ErrNotConfigured
	if errors.As(err, &notConfigured) {
		return nil, &Error{
			Kind:    KindNotConfigured,
			Message: "quiz generation is not configured: missing API key",
			Err:     err,
		}
	}

	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		if len(bytes.TrimSpace(invalid.Content)) == 0 {
			return nil, &Error{Kind: KindMalformedResponse, Message: "the model returned an empty reply", Err: err}
		}
		return invalid.Content, nil
	}

	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return nil, &Error{Kind: KindMalformedResponse, Message: "the model reply was cut off", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &Error{Kind: KindUpstream, Message: "quiz generation timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return nil, &Error{Kind: KindUpstream, Message: "quiz generation was cancelled", Err: err}
	}

	var rateLimited *llm.ErrRateLimit
	if errors.As(err, &rateLimited) {
		return nil, &Error{Kind: KindUpstream, Message: "the language model is rate limiting requests", Err: err}
	}

	return nil, &Error{Kind: KindUpstream, Message: "failed to reach the language model", Err: err}
}

// ParseReply decodes a raw model reply and validates it as a quiz. Failures
// are *Error values of KindMalformedResponse or KindStructural.
func ParseReply(content []byte) ([]Question, error) {
	payload, err := decodePayload(content)
	if err != nil {
		return nil, &Error{
			Kind:    KindMalformedResponse,
			Message: "the model reply was not valid JSON",
			Err:     err,
		}
	}

	questions, err := Validate(payload)
	if err != nil {
		return nil, &Error{
			Kind:    KindStructural,
			Message: fmt.Sprintf("the model reply is not a valid quiz (%v)", err),
			Err:     err,
		}
	}
	return questions, nil
}

// decodePayload parses content into a loosely-typed value. Numbers stay
// json.Number so numeric ids keep their text. Trailing data is rejected.
func decodePayload(content json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, errors.New("empty reply")
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return payload, nil
}

// newQuizID returns a time-ordered, randomly salted identifier.
func newQuizID() string {
	return "quiz_" + uuid.Must(uuid.NewV7()).String()
}
