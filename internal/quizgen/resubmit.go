package quizgen

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// ResubmitConfig controls caller-side resubmission.
type ResubmitConfig struct {
	MaxAttempts int           // Total attempts including the first. Default: 1.
	InitialWait time.Duration // Default: 1s
	MaxWait     time.Duration // Default: 10s
	Multiplier  float64       // Default: 2.0
}

// DefaultResubmitConfig makes a single attempt.
func DefaultResubmitConfig() ResubmitConfig {
	return ResubmitConfig{
		MaxAttempts: 1,
		InitialWait: 1 * time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// Resubmitter is a Generator decorator that calls the inner Generator again
// after KindUpstream failures, with exponential backoff and jitter. Every
// other kind is returned immediately: a bad topic, a missing key or an
// unusable reply will not improve by asking again.
type Resubmitter struct {
	inner  Generator
	config ResubmitConfig

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// WithResubmit wraps a Generator with caller-side resubmission.
func WithResubmit(g Generator, cfg ResubmitConfig) *Resubmitter {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Resubmitter{inner: g, config: cfg}
}

func (r *Resubmitter) Generate(ctx context.Context, topic string) (*Quiz, error) {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		quiz, err := r.inner.Generate(ctx, topic)
		if err == nil {
			return quiz, nil
		}
		lastErr = err

		if KindOf(err) != KindUpstream || ctx.Err() != nil {
			return nil, err
		}

		// Last attempt, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err, wait)
		}
		select {
		case <-ctx.Done():
			return nil, &Error{Kind: KindUpstream, Message: "quiz generation was cancelled", Err: ctx.Err()}
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// backoff computes the wait duration for the given attempt.
func (r *Resubmitter) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
