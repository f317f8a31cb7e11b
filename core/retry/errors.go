package retry

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFatal is matched by every [FatalError]. Use errors.Is to detect a
	// non-retryable remote failure without inspecting the concrete type.
	ErrFatal = errors.New("retry: fatal remote failure")

	// ErrTimeout is matched by every [TimeoutError]. It signals that the
	// caller's context ended before a result was obtained.
	ErrTimeout = errors.New("retry: cancelled before completion")

	// ErrRateLimited can be returned (or wrapped) by an action to report a
	// rate limit when no HTTP status code is available.
	ErrRateLimited = errors.New("retry: rate limited")
)

// FatalError reports a failure that must not be retried, such as an
// authentication error, a malformed request or an unclassified 5xx.
type FatalError struct {
	// Attempt is the 1-based attempt that produced the failure.
	Attempt int
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("retry: fatal failure on attempt %d: %v", e.Attempt, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFatal) true for any FatalError.
func (e *FatalError) Is(target error) bool { return target == ErrFatal }

// TimeoutError reports that the context was cancelled or its deadline passed,
// either while waiting between attempts or while an attempt was in flight.
type TimeoutError struct {
	// Attempts is the number of attempts that were started.
	Attempts int
	// Waiting is the backoff that was pending when cancellation hit, zero
	// when the cancellation interrupted an attempt.
	Waiting time.Duration
	// Err is the context error.
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Waiting > 0 {
		return fmt.Sprintf("retry: cancelled during %s backoff after %d attempts: %v", e.Waiting, e.Attempts, e.Err)
	}
	return fmt.Sprintf("retry: cancelled after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTimeout) true for any TimeoutError.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
