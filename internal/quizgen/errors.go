package quizgen

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from a Generator.
	KindUnknown Kind = iota

	// KindInvalidInput means the topic was empty after trimming.
	KindInvalidInput

	// KindNotConfigured means the model client has no credential.
	KindNotConfigured

	// KindUpstream covers network, timeout and service failures.
	KindUpstream

	// KindMalformedResponse means the reply was not parseable JSON.
	KindMalformedResponse

	// KindStructural means the reply parsed but has the wrong shape.
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotConfigured:
		return "not_configured"
	case KindUpstream:
		return "upstream"
	case KindMalformedResponse:
		return "malformed_response"
	case KindStructural:
		return "structural"
	}
	return "unknown"
}

// Class groups kinds for transports that report a status.
type Class int

const (
	ClassServer Class = iota
	ClassClient
	ClassMisconfigured
)

// Class maps the kind onto the client / misconfiguration / server split.
func (k Kind) Class() Class {
	switch k {
	case KindInvalidInput:
		return ClassClient
	case KindNotConfigured:
		return ClassMisconfigured
	}
	return ClassServer
}

// Error is returned by Generator implementations for every failure.
type Error struct {
	Kind Kind

	// Message is safe to show to end users. It never contains model output.
	Message string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "failed to generate quiz"
}

// ValidationError describes the first rule a quiz payload violated.
type ValidationError struct {
	// Rule names the check, e.g. "count", "options", "correctAnswer".
	Rule string

	// Question is the 1-based position of the offending question, or 0
	// when the violation is not tied to one question.
	Question int

	Message string
}

func (e *ValidationError) Error() string {
	if e.Question > 0 {
		return fmt.Sprintf("rule %q, question %d: %s", e.Rule, e.Question, e.Message)
	}
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Message)
}
