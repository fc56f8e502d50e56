package quizgen

import "context"

// Generator turns a topic into a validated Quiz.
type Generator interface {
	// Generate returns a Quiz that satisfies every Quiz invariant, or an
	// *Error. It never returns a partial Quiz and never retries.
	Generate(ctx context.Context, topic string) (*Quiz, error)
}
