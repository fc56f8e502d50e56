package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A single multiple-choice question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":      map[string]any{"type": "string"},
				"correctAnswer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
				"options": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"A": map[string]any{"type": "string"},
						"B": map[string]any{"type": "string"},
					},
					"required": []any{"A", "B"},
				},
			},
			"required": []any{"question", "correctAnswer"},
		},
	}
}

func TestValidateResponse_ValidJSON(t *testing.T) {
	raw := json.RawMessage(`{"question":"Which planet is largest?","correctAnswer":"A","options":{"A":"Jupiter","B":"Mars"}}`)
	if err := validateResponse(testSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"question":"Which planet is largest?","correctAnswer":"B"}`)
	if err := validateResponse(testSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"question":"Q"}`},
		{"wrong type", `{"question":7,"correctAnswer":"A"}`},
		{"invalid enum", `{"question":"Q","correctAnswer":"E"}`},
		{"nested missing", `{"question":"Q","correctAnswer":"A","options":{"A":"x"}}`},
		{"malformed JSON", `{not json}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := json.RawMessage(tt.raw)
			err := validateResponse(testSchema(), raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if string(invErr.Content) != tt.raw {
				t.Fatalf("content = %q, want raw reply", invErr.Content)
			}
		})
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	if err := validateResponse(testSchema(), json.RawMessage(``)); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NamesOffendingField(t *testing.T) {
	err := validateResponse(testSchema(), json.RawMessage(`{"question":"Q","correctAnswer":"E"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "/correctAnswer") {
		t.Fatalf("error %q does not name the offending field", err)
	}
}

func TestValidateResponse_SchemasWithSameName(t *testing.T) {
	loose := &Schema{Name: "test-question", Definition: map[string]any{"type": "object"}}
	raw := json.RawMessage(`{"question":7}`)

	if err := validateResponse(testSchema(), raw); err == nil {
		t.Fatal("strict schema should reject")
	}
	if err := validateResponse(loose, raw); err != nil {
		t.Fatalf("loose schema with the same name should accept, got: %v", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`not even json`)
	if err := validateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestCheckContent_Truncated(t *testing.T) {
	raw := json.RawMessage(`{"question":"Which pla`)
	err := checkContent(Request{Schema: testSchema()}, raw, StopMaxTokens)
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
	if string(trunc.Content) != string(raw) {
		t.Fatalf("content = %q, want %q", trunc.Content, raw)
	}
}
