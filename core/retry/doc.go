// Package retry re-invokes remote calls that fail transiently. It separates
// rate-limit failures (retried with exponential backoff) from fatal ones
// (returned immediately), and turns a persistent rate limit into a degraded
// result instead of an error so user-facing flows can keep going.
//
// The main entry points are [Do] for any result type and [DoText] for calls
// that produce text, which substitutes [Policy.DegradedText] when retries run
// out.
//
// # Usage
//
//	policy := retry.DefaultPolicy()
//	res, err := retry.DoText(ctx, policy, func(ctx context.Context) (string, error) {
//	    resp, err := provider.SendMessage(ctx, request)
//	    if err != nil {
//	        return "", err
//	    }
//	    return resp.Content, nil
//	})
//	switch {
//	case errors.Is(err, retry.ErrTimeout):
//	    // caller deadline hit while waiting
//	case errors.Is(err, retry.ErrFatal):
//	    // auth, bad request, 5xx...
//	case res.Degraded:
//	    // res.Value holds the placeholder text
//	}
//
// Every call owns its policy by value; the package holds no global state, so
// independent callers may retry concurrently.
package retry
