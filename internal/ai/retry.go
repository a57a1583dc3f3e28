package ai

import (
	"context"
	"time"
)

// retryBackoff is the base delay; attempt i waits retryBackoff*(i+1).
var retryBackoff = 500 * time.Millisecond

// WithRetry calls fn up to attempts times, retrying only transient failures.
func WithRetry[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var out T
	var err error
	for i := 0; i < attempts; i++ {
		out, err = fn(ctx)
		if err == nil || !IsRetryable(err) {
			return out, err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(retryBackoff * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, err
		case <-timer.C:
		}
	}
	return out, err
}
