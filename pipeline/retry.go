package pipeline

import (
	"context"
	"time"

	"github.com/waypointhq/waypoint"
)

// Retry defaults for the primary extraction call.
const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = 1 * time.Second
)

// RetryPolicy configures the backoff wrapper around the primary
// extraction call. The delay doubles after each failed attempt.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns the standard policy: 2 retries with delays
// of 1s and 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultRetryDelay}
}

// extractFunc is the signature of a retriable extraction attempt.
type extractFunc func(ctx context.Context) (*waypoint.Extraction, error)

// extractWithRetry runs fn with exponential backoff. Only internal
// errors (malformed model output, backend failures) are retried;
// EINVALID is never retriable. After exhausting retries the last error
// propagates unchanged.
func extractWithRetry(ctx context.Context, policy RetryPolicy, fn extractFunc) (*waypoint.Extraction, error) {
	delay := policy.BaseDelay
	maxAttempts := policy.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		extraction, err := fn(ctx)
		if err == nil {
			return extraction, nil
		}
		lastErr = err

		if waypoint.ErrorCode(err) == waypoint.EINVALID {
			break
		}
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, lastErr
}
