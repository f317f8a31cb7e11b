package config

import (
	"time"

	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/providers/ai/mistral"
	"github.com/leofalp/pitchlens/providers/observability/slogobs"
	"github.com/leofalp/pitchlens/providers/speech/elevenlabs"
)

// Config is the complete pitchlens configuration.
type Config struct {
	Mistral    MistralConfig    `yaml:"mistral"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Retry      RetryConfig      `yaml:"retry"`
	Log        LogConfig        `yaml:"log"`
	Batch      BatchConfig      `yaml:"batch"`
}

// MistralConfig configures the LLM provider.
type MistralConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	// RateLimit is the client-side requests per second. Zero disables it.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// ElevenLabsConfig configures the speech provider.
type ElevenLabsConfig struct {
	APIKey    string  `yaml:"api_key"`
	BaseURL   string  `yaml:"base_url"`
	Voice     string  `yaml:"voice"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// RetryConfig mirrors retry.Policy. Durations use Go syntax ("1s", "500ms").
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialDelay   time.Duration `yaml:"initial_delay"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	JitterFraction float64       `yaml:"jitter_fraction"`
}

// LogConfig selects verbosity and layout of the log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BatchConfig tunes batch analysis.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// DefaultWorkers is the batch concurrency when none is configured.
const DefaultWorkers = 4

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mistral: MistralConfig{
			Model: mistral.DefaultModel,
		},
		ElevenLabs: ElevenLabsConfig{
			Voice: elevenlabs.DefaultVoice,
		},
		Retry: RetryConfig{
			MaxRetries:    retry.DefaultMaxRetries,
			InitialDelay:  retry.DefaultInitialDelay,
			BackoffFactor: retry.DefaultBackoffFactor,
			MaxDelay:      retry.DefaultMaxDelay,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(slogobs.FormatCompact),
		},
		Batch: BatchConfig{
			Workers: DefaultWorkers,
		},
	}
}

// Policy builds the retry policy. Extra options are applied last.
func (c RetryConfig) Policy(opts ...retry.Option) retry.Policy {
	base := []retry.Option{
		retry.WithMaxRetries(c.MaxRetries),
		retry.WithBackoff(c.InitialDelay, c.BackoffFactor, c.MaxDelay),
		retry.WithJitter(c.JitterFraction),
	}
	return retry.NewPolicy(append(base, opts...)...)
}

// Provider builds the Mistral client. Unset values keep the client defaults.
func (c MistralConfig) Provider() *mistral.Provider {
	p := mistral.New().WithRateLimit(c.RateLimit, c.Burst)
	if c.APIKey != "" {
		p.WithAPIKey(c.APIKey)
	}
	if c.BaseURL != "" {
		p.WithBaseURL(c.BaseURL)
	}
	if c.Model != "" {
		p.WithModel(c.Model)
	}
	return p
}

// Provider builds the ElevenLabs client.
func (c ElevenLabsConfig) Provider() *elevenlabs.Provider {
	p := elevenlabs.New().WithRateLimit(c.RateLimit, c.Burst)
	if c.APIKey != "" {
		p.WithAPIKey(c.APIKey)
	}
	if c.BaseURL != "" {
		p.WithBaseURL(c.BaseURL)
	}
	if c.Voice != "" {
		p.WithVoice(c.Voice)
	}
	return p
}

// Observer builds the slog-backed observability provider.
func (c LogConfig) Observer(opts ...slogobs.Option) *slogobs.Observer {
	base := []slogobs.Option{
		slogobs.WithLevel(slogobs.ParseLevel(c.Level)),
		slogobs.WithFormat(slogobs.ParseFormat(c.Format)),
	}
	return slogobs.New(append(base, opts...)...)
}
