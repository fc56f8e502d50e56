package quizgen

// Generation parameters. They are fixed and not exposed to users.
const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the model reply.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the fixed generation parameters.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}
