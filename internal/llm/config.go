package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string

	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single generation request. Default: 60s.
	Timeout time.Duration
}

// Model names are fixed per provider; they are not read from the environment.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-haiku"
	DefaultGeminiModel     = "gemini-flash"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
)

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional. Override for OpenAI-compatible gateways.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with no credentials and the fixed models.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		OpenAI:     OpenAIConfig{Model: DefaultOpenAIModel},
		Anthropic:  AnthropicConfig{Model: DefaultAnthropicModel},
		Gemini:     GeminiConfig{Model: DefaultGeminiModel},
		OpenRouter: OpenRouterConfig{Model: DefaultOpenRouterModel},
		Timeout:    60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from QUIZGEN_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg)
	return cfg, err
}

// ApplyEnv overlays QUIZGEN_* environment variables onto cfg. A malformed
// QUIZGEN_LLM_TIMEOUT is an error rather than silently falling back.
func ApplyEnv(cfg *Config) error {
	if p := os.Getenv("QUIZGEN_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if k := os.Getenv("QUIZGEN_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if u := os.Getenv("QUIZGEN_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if k := os.Getenv("QUIZGEN_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if k := os.Getenv("QUIZGEN_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if k := os.Getenv("QUIZGEN_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}
	if t := os.Getenv("QUIZGEN_LLM_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid QUIZGEN_LLM_TIMEOUT %q: %w", t, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid QUIZGEN_LLM_TIMEOUT %q: must be positive", t)
		}
		cfg.Timeout = d
	}
	return nil
}

// DiscoverConfig checks the vendors' standard API key variables in priority
// order (OpenAI → Gemini → Anthropic → OpenRouter) and returns a Config for
// the first provider whose key is found. Returns (Config{}, false) if none.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
// A missing key yields *ErrNotConfigured.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return &ErrNotConfigured{Provider: c.Provider, EnvVar: "QUIZGEN_OPENAI_API_KEY"}
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return &ErrNotConfigured{Provider: c.Provider, EnvVar: "QUIZGEN_ANTHROPIC_API_KEY"}
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return &ErrNotConfigured{Provider: c.Provider, EnvVar: "QUIZGEN_GEMINI_API_KEY"}
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return &ErrNotConfigured{Provider: c.Provider, EnvVar: "QUIZGEN_OPENROUTER_API_KEY"}
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
