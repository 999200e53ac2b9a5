package core

import (
	"context"
	"time"
)

// RetryPolicy bounds node-local retries of tool and inference calls. Attempts
// counts total tries, not re-tries; backoff grows linearly with the attempt
// number. Failures with Retryable == false stop immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy matches the small fixed bound the design calls for.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2, Backoff: 250 * time.Millisecond}

// Retry runs fn up to MaxAttempts times, sleeping Backoff * attempt between
// tries. Only retryable failures are retried; any other error is returned as
// is. The context is honored both between attempts and by fn itself.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		}
	}
	return err
}
