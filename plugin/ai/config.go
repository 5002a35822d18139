package ai

import "time"

// Config holds the generation service configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
	Timeout     time.Duration
	// RequestsPerMinute caps outbound calls; 0 disables the limiter.
	RequestsPerMinute int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://api.openai.com/v1",
		APIKey:            "",
		Model:             "gpt-4o-mini",
		Temperature:       0.2,
		MaxRetries:        3,
		Timeout:           30 * time.Second,
		RequestsPerMinute: 60,
	}
}
