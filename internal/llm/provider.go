package llm

import (
	"context"
	"encoding/json"
)

// Provider is the narrow contract quizgen has with a language-model service.
// Callers send a Request and get the model's reply back as raw bytes.
type Provider interface {
	// Generate sends a prompt to the model and returns its reply.
	// When req.Schema is set the provider asks for native structured output
	// and checks the reply against the schema before returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the instructional prompt.
	System string

	// Messages is the conversation. Quiz generation sends a single user message.
	Messages []Message

	// Schema is the JSON Schema the reply should conform to. Nil means the
	// reply is returned as-is.
	Schema *Schema

	// MaxTokens bounds the size of the reply.
	MaxTokens int

	// Temperature controls sampling randomness, 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, kebab-case, e.g. "quiz".
	Name string

	// Description is sent to the model alongside the schema.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the raw reply. It is only guaranteed to be JSON when the
	// request carried a Schema.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to StopEnd or StopMaxTokens.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// checkContent rejects truncated replies and, when the request carried a
// schema, replies that do not conform to it.
func checkContent(req Request, content json.RawMessage, stop string) error {
	if stop == StopMaxTokens {
		return &ErrMaxTokensExceeded{Content: content}
	}
	return validateResponse(req.Schema, content)
}

// Text returns the reply as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
