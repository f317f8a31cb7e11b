package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the wait before the first retry.
	DefaultInitialDelay = time.Second
	// DefaultBackoffFactor is the exponential growth of the wait.
	DefaultBackoffFactor = 2.0
	// DefaultMaxDelay caps any single wait.
	DefaultMaxDelay = 60 * time.Second
	// DefaultDegradedText is the placeholder produced by DoText when the
	// provider keeps rate limiting.
	DefaultDegradedText = "The service is temporarily unavailable because the provider is rate limiting requests. Please try again later."
)

// Policy holds the tuning parameters of a retried call. A Policy is a plain
// value: copy it and override fields per call. Zero-valued delays and factor
// are replaced by the defaults when the policy is used.
type Policy struct {
	// MaxRetries is the maximum number of retries after the first failure.
	// A value of 3 means the action runs at most 4 times. Negative values
	// are treated as 0.
	MaxRetries int

	// InitialDelay is the wait before the first retry. Default: 1s.
	InitialDelay time.Duration

	// BackoffFactor multiplies the wait on each retry:
	// wait = min(InitialDelay * BackoffFactor^attempt, MaxDelay). Default: 2.
	BackoffFactor float64

	// MaxDelay caps the computed wait. Default: 60s.
	MaxDelay time.Duration

	// JitterFraction adds up to JitterFraction*wait of random noise. Default: 0.
	JitterFraction float64

	// Rand returns a value in [0, 1) for jitter. Defaults to math/rand/v2.
	Rand func() float64

	// Classify decides whether an error is retryable. Default: DefaultClassifier.
	Classify Classifier

	// OnRetry is called before each wait with the 1-based number of the
	// failed attempt, the wait about to happen and the error.
	OnRetry func(attempt int, wait time.Duration, err error)

	// Sleep blocks for d or until ctx is done. Tests inject a fake clock here.
	Sleep func(ctx context.Context, d time.Duration) error

	// DegradedText is the placeholder DoText returns on a degraded result.
	DegradedText string
}

// Option customises a Policy built with NewPolicy.
type Option func(*Policy)

// WithMaxRetries overrides the retry budget.
func WithMaxRetries(n int) Option {
	return func(p *Policy) { p.MaxRetries = n }
}

// WithBackoff overrides the initial wait, growth factor and cap.
func WithBackoff(initial time.Duration, factor float64, max time.Duration) Option {
	return func(p *Policy) {
		p.InitialDelay = initial
		p.BackoffFactor = factor
		p.MaxDelay = max
	}
}

// WithJitter enables random jitter as a fraction of each wait.
func WithJitter(fraction float64) Option {
	return func(p *Policy) { p.JitterFraction = fraction }
}

// WithClassifier overrides the failure classification.
func WithClassifier(c Classifier) Option {
	return func(p *Policy) { p.Classify = c }
}

// WithOnRetry registers a callback invoked before each wait.
func WithOnRetry(fn func(attempt int, wait time.Duration, err error)) Option {
	return func(p *Policy) { p.OnRetry = fn }
}

// WithSleep replaces the wait implementation.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Policy) { p.Sleep = fn }
}

// WithDegradedText overrides the placeholder used by DoText.
func WithDegradedText(text string) Option {
	return func(p *Policy) { p.DegradedText = text }
}

// DefaultPolicy returns the process-wide defaults: 3 retries, 1s initial
// wait, factor 2, 60s cap, no jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    DefaultMaxRetries,
		InitialDelay:  DefaultInitialDelay,
		BackoffFactor: DefaultBackoffFactor,
		MaxDelay:      DefaultMaxDelay,
		DegradedText:  DefaultDegradedText,
	}
}

// NewPolicy returns DefaultPolicy with opts applied.
func NewPolicy(opts ...Option) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// withDefaults fills zero-valued fields.
func (p Policy) withDefaults() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = DefaultBackoffFactor
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.JitterFraction < 0 {
		p.JitterFraction = 0
	}
	if p.Rand == nil {
		p.Rand = rand.Float64
	}
	if p.Classify == nil {
		p.Classify = DefaultClassifier
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	if p.DegradedText == "" {
		p.DegradedText = DefaultDegradedText
	}
	return p
}

// Delay returns the wait before retry number attempt+1 (attempt is 0-indexed):
// min(InitialDelay * BackoffFactor^attempt, MaxDelay), plus jitter, capped.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()

	base := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	if base > float64(p.MaxDelay) {
		base = float64(p.MaxDelay)
	}

	if p.JitterFraction > 0 {
		base += base * p.JitterFraction * p.Rand()
		if base > float64(p.MaxDelay) {
			base = float64(p.MaxDelay)
		}
	}

	return time.Duration(base)
}

// sleepContext waits for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
