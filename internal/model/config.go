package model

import "time"

// Config holds the full runtime configuration.
// The anonymity threshold is intentionally not part of this structure: it is
// a compiled-in policy constant (see internal/anonymity) and must not be
// adjustable from any user-facing surface.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Retry  RetryConfig  `yaml:"retry"`
	Rate   RateConfig   `yaml:"rate"`
	Cache  CacheConfig  `yaml:"cache"`
	Output OutputConfig `yaml:"output"`
}

// LLMConfig configures the generation backend
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"` // From environment only, never persisted
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // Per-call wall-clock budget, seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`

	// Proxy settings for the HTTP-based providers
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
}

// RetryConfig bounds the per-section attempt policy
type RetryConfig struct {
	// MaxAttempts is the total attempt budget per section, first call
	// included. Applies both to transient backend failures and to drafts
	// below the section's minimum word target.
	MaxAttempts int `yaml:"max_attempts"`

	// Backoff is the base delay before a retry; attempt N waits N*Backoff
	Backoff time.Duration `yaml:"backoff"`
}

// RateConfig throttles generation calls
type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CacheConfig configures the generation response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"` // Disk layer location ("" = memory only)
	TTL     time.Duration `yaml:"ttl"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	IncludeCharts bool   `yaml:"include_charts"`
	Verbose       bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     120,
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff:     2 * time.Second,
		},
		Rate: RateConfig{
			RequestsPerSecond: 0.5,
			Burst:             2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{
			Dir:           "output",
			IncludeCharts: true,
		},
	}
}
