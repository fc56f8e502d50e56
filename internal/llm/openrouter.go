package llm

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterHeaders identify the application to OpenRouter's dashboard.
var openRouterHeaders = map[string]string{
	"HTTP-Referer": "https://github.com/abhisek/quizgen",
	"X-Title":      "quizgen",
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// OpenRouter exposes an OpenAI-compatible API, so the OpenAI SDK is reused.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrNotConfigured{Provider: "openrouter", EnvVar: "QUIZGEN_OPENROUTER_API_KEY"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	return newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, openRouterHeaders), nil
}
