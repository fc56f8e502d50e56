package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quizgen/internal/store"
)

// NewProvider creates a Provider from configuration.
// The configuration is validated first, so a missing API key surfaces as
// *ErrNotConfigured before any client is built. The returned provider
// records every call to eventRepo when it is non-nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if cfg.Timeout > 0 {
		base = WithTimeout(base, cfg.Timeout)
	}
	if eventRepo != nil {
		base = WithLogging(base, cfg.Provider, eventRepo)
	}
	return base, nil
}
