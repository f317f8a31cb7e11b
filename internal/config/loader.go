package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration: defaults, then the YAML file at path (when
// path is not empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of the defaults and validates
// the result. The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment,
// skipping files that do not exist. Variables already set are kept. With no
// argument it looks for ".env" in the working directory.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with the variables found through lookup.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	setString(lookup, "MISTRAL_API_KEY", &cfg.Mistral.APIKey)
	setString(lookup, "MISTRAL_API_BASE_URL", &cfg.Mistral.BaseURL)
	setString(lookup, "PITCHLENS_MISTRAL_MODEL", &cfg.Mistral.Model)
	setString(lookup, "ELEVENLABS_API_KEY", &cfg.ElevenLabs.APIKey)
	setString(lookup, "ELEVENLABS_API_BASE_URL", &cfg.ElevenLabs.BaseURL)
	setString(lookup, "PITCHLENS_VOICE", &cfg.ElevenLabs.Voice)
	setString(lookup, "PITCHLENS_LOG_LEVEL", &cfg.Log.Level)
	setString(lookup, "PITCHLENS_LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookupNonEmpty(lookup, "PITCHLENS_MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PITCHLENS_MAX_RETRIES: %w", err))
		} else {
			cfg.Retry.MaxRetries = n
		}
	}
	if v, ok := lookupNonEmpty(lookup, "PITCHLENS_BACKOFF_FACTOR"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("PITCHLENS_BACKOFF_FACTOR: %w", err))
		} else {
			cfg.Retry.BackoffFactor = f
		}
	}
	errs = append(errs,
		setDuration(lookup, "PITCHLENS_INITIAL_DELAY", &cfg.Retry.InitialDelay),
		setDuration(lookup, "PITCHLENS_MAX_DELAY", &cfg.Retry.MaxDelay),
	)
	if v, ok := lookupNonEmpty(lookup, "PITCHLENS_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PITCHLENS_WORKERS: %w", err))
		} else {
			cfg.Batch.Workers = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(lookup LookupFunc, key string, dst *string) {
	if v, ok := lookupNonEmpty(lookup, key); ok {
		*dst = v
	}
}

func setDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	v, ok := lookupNonEmpty(lookup, key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate checks cfg and returns every problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	r := cfg.Retry
	if r.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries %d must not be negative", r.MaxRetries))
	}
	if r.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry.initial_delay %s must be positive", r.InitialDelay))
	}
	if r.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("retry.backoff_factor %g must be at least 1", r.BackoffFactor))
	}
	if r.MaxDelay < r.InitialDelay {
		errs = append(errs, fmt.Errorf("retry.max_delay %s is shorter than retry.initial_delay %s", r.MaxDelay, r.InitialDelay))
	}
	if r.JitterFraction < 0 || r.JitterFraction > 1 {
		errs = append(errs, fmt.Errorf("retry.jitter_fraction %g is out of range [0, 1]", r.JitterFraction))
	}

	if cfg.Mistral.RateLimit < 0 || cfg.ElevenLabs.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if cfg.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers %d must be at least 1", cfg.Batch.Workers))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: trace, debug, info, warn, error", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "compact", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: compact, json", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
