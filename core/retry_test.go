package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_BoundOnPersistentTimeout(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}
	err := Retry(context.Background(), policy, func(context.Context) error {
		calls++
		return NewFailure(FailureTimeout, "slow remote")
	})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	f, ok := AsFailure(err)
	if !ok || f.Kind != FailureTimeout {
		t.Errorf("err = %v", err)
	}
}

func TestRetry_NoRetryOnInvalidResponse(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy, func(context.Context) error {
		calls++
		return NewFailure(FailureInvalidResponse, "malformed")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if f, _ := AsFailure(err); f == nil || f.Kind != FailureInvalidResponse {
		t.Errorf("err = %v", err)
	}
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}
	err := Retry(context.Background(), policy, func(context.Context) error {
		calls++
		if calls < 2 {
			return NewFailure(FailureUnavailable, "connection refused")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetry_ContextCancelBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := RetryPolicy{MaxAttempts: 5, Backoff: 50 * time.Millisecond}
	err := Retry(ctx, policy, func(context.Context) error {
		calls++
		cancel()
		return NewFailure(FailureTimeout, "slow")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err == nil || errors.Is(err, context.Canceled) {
		// The last failure is returned, not the context error.
		t.Errorf("err = %v", err)
	}
}
