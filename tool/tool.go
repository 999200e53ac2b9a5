// Package tool implements the uniform tool adapter contract wrapping external
// capabilities (web search, email dispatch) behind schema-validated
// invocations with consistent failure handling.
//
// Failures surface as *core.Failure so calling nodes can apply the shared
// bounded-retry policy: timeouts, unavailability and rate limits may be
// retried; invalid responses may not.
package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/localmind-ai/localmind/core"
)

// Tool is the interface every adapter implements.
//
// Implementations must be safe for concurrent use: adapters are shared across
// simultaneously executing runs, and any pooling or rate limiting is their
// internal concern.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description of the capability.
	Description() string

	// Parameters returns a JSON-schema-like map describing accepted
	// arguments, used for validation before invocation.
	Parameters() map[string]any

	// Invoke executes the tool. Errors are *core.Failure values (possibly
	// wrapped) or the context's own error on cancellation.
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Call invokes the tool under the node-local retry policy and returns a
// completed ToolCallRecord. The record always comes back non-nil: on failure
// its Failure field carries the last error instead of the call escalating to
// a run-level failure, leaving the policy decision to the calling node.
func Call(ctx context.Context, t Tool, args map[string]any, policy core.RetryPolicy) *core.ToolCallRecord {
	rec := core.NewToolCallRecord(t.Name(), args)
	start := time.Now()

	var result any
	err := core.Retry(ctx, policy, func(ctx context.Context) error {
		var callErr error
		result, callErr = t.Invoke(ctx, args)
		return callErr
	})
	rec.Latency = time.Since(start)

	if err != nil {
		if f, ok := core.AsFailure(err); ok {
			rec.Failure = f
		} else {
			rec.Failure = core.NewFailure(core.FailureUnavailable, "%v", err)
		}
		return rec
	}
	rec.Result = result
	return rec
}

// Summary renders a short human-readable description of a completed record
// for conversation entries and logs.
func Summary(rec *core.ToolCallRecord) string {
	if rec.Failed() {
		return fmt.Sprintf("%s failed: %s", rec.Tool, rec.Failure.Message)
	}
	return fmt.Sprintf("%s completed in %s", rec.Tool, rec.Latency.Round(time.Millisecond))
}
