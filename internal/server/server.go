// Package server exposes quiz generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/quizgen/internal/quizgen"
)

// maxBodyBytes bounds the generate request body.
const maxBodyBytes = 64 << 10

// TimeoutSlack is added to the LLM timeout to form the request timeout.
const TimeoutSlack = 30 * time.Second

// Options configures the router.
type Options struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// RequestTimeout bounds each request. It should exceed the LLM timeout
	// so that upstream timeouts are reported by the generator. Default: 90s.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for gen.
func NewRouter(gen quizgen.Generator, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/generate-quiz", GenerateQuizHandler(gen))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

type generateRequest struct {
	Topic string `json:"topic"`
}

type generateResponse struct {
	Quiz *quizgen.Quiz `json:"quiz"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GenerateQuizHandler handles POST {topic} and replies {quiz} or {error}.
func GenerateQuizHandler(gen quizgen.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		quiz, err := gen.Generate(r.Context(), req.Topic)
		if err != nil {
			writeJSON(w, StatusFor(err), errorResponse{Error: quizgen.MessageOf(err)})
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{Quiz: quiz})
	}
}

// StatusFor maps a generation error to an HTTP status:
// 400 for bad input, 500 for missing configuration, 502 otherwise.
func StatusFor(err error) int {
	switch quizgen.KindOf(err).Class() {
	case quizgen.ClassClient:
		return http.StatusBadRequest
	case quizgen.ClassMisconfigured:
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
