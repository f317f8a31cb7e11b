package retry

import "context"

// Result is the outcome of a retried call that did not fail.
type Result[T any] struct {
	// Value is the action's value, or the placeholder on a degraded DoText.
	Value T
	// Attempts is the number of times the action ran.
	Attempts int
	// Degraded is true when every attempt hit a rate limit.
	Degraded bool
	// Cause is the last rate-limit error of a degraded result.
	Cause error
}

// Do runs action under policy.
//
// A nil error returns immediately. A failure classified as [KindRateLimit] is
// retried after [Policy.Delay] while attempts remain; once MaxRetries is
// exhausted Do returns a Result with Degraded set and a nil error. Any other
// failure returns a [*FatalError] at once. Cancellation of ctx, before an
// attempt, while it runs, or during a wait, returns a [*TimeoutError].
//
// Attempts are strictly sequential and nothing is shared between calls.
func Do[T any](ctx context.Context, policy Policy, action func(ctx context.Context) (T, error)) (Result[T], error) {
	policy = policy.withDefaults()

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := policy.Delay(attempt - 1)
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, wait, lastErr)
			}
			if err := policy.Sleep(ctx, wait); err != nil {
				return Result[T]{Attempts: attempt}, &TimeoutError{Attempts: attempt, Waiting: wait, Err: err}
			}
		}

		if err := ctx.Err(); err != nil {
			return Result[T]{Attempts: attempt}, &TimeoutError{Attempts: attempt, Err: err}
		}

		value, err := action(ctx)
		if err == nil {
			return Result[T]{Value: value, Attempts: attempt + 1}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result[T]{Attempts: attempt + 1}, &TimeoutError{Attempts: attempt + 1, Err: ctxErr}
		}

		if policy.Classify(err) != KindRateLimit {
			return Result[T]{Attempts: attempt + 1}, &FatalError{Attempt: attempt + 1, Err: err}
		}

		lastErr = err
	}

	return Result[T]{Attempts: policy.MaxRetries + 1, Degraded: true, Cause: lastErr}, nil
}

// DoText is Do for text-producing calls. On a degraded result Value carries
// [Policy.DegradedText] so the text can flow on through normal processing.
func DoText(ctx context.Context, policy Policy, action func(ctx context.Context) (string, error)) (Result[string], error) {
	policy = policy.withDefaults()

	res, err := Do(ctx, policy, action)
	if err != nil {
		return res, err
	}
	if res.Degraded {
		res.Value = policy.DegradedText
	}
	return res, nil
}
