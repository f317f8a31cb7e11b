package retry

import (
	"errors"
	"net/http"
)

// Kind is the classification of a failed attempt.
type Kind int

const (
	// KindFatal failures are returned immediately.
	KindFatal Kind = iota
	// KindRateLimit failures are retried while the budget lasts.
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	default:
		return "fatal"
	}
}

// Classifier maps an attempt error to a [Kind].
type Classifier func(err error) Kind

// StatusCoder is implemented by errors that carry the HTTP status code of a
// failed remote call.
type StatusCoder interface {
	HTTPStatus() int
}

// StatusCode returns the HTTP status carried anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// DefaultClassifier treats a failure as a rate limit only when the remote
// call reported HTTP 429 or the action returned [ErrRateLimited]. Network,
// auth and malformed-request errors are fatal.
func DefaultClassifier(err error) Kind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, ErrRateLimited) {
		return KindRateLimit
	}
	if StatusCode(err) == http.StatusTooManyRequests {
		return KindRateLimit
	}
	return KindFatal
}
