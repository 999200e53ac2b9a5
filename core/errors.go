package core

import (
	"errors"
	"fmt"
)

// Engine-level errors. Both are fatal to the run they occur in and are never
// retried; the boundary reports them as a failure category distinct from a
// completed answer.
var (
	// ErrInvalidRoute indicates a node selected a successor that does not
	// exist in the graph. The engine fails closed instead of guessing.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrStepLimitExceeded indicates the configured step ceiling was reached
	// before a terminal node was selected.
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// FailureKind classifies tool adapter and inference client failures.
type FailureKind string

const (
	// FailureTimeout covers calls that exceeded their deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureUnavailable covers unreachable or erroring remotes.
	FailureUnavailable FailureKind = "unavailable"
	// FailureInvalidResponse covers malformed or unparseable outputs,
	// including model text that violates a structured-decision contract.
	FailureInvalidResponse FailureKind = "invalid_response"
	// FailureRateLimited covers explicit throttling by the remote.
	FailureRateLimited FailureKind = "rate_limited"
)

// Failure is the uniform error shape surfaced by tool adapters and the
// inference client. Retryable mirrors the kind: timeouts, unavailability and
// rate limits may be retried with backoff; invalid responses may not.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NewFailure builds a Failure deriving Retryable from the kind.
func NewFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Retryable: kind != FailureInvalidResponse,
	}
}

// AsFailure unwraps err into a *Failure if one is present in its chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsRetryable reports whether err carries a retryable Failure.
func IsRetryable(err error) bool {
	f, ok := AsFailure(err)
	return ok && f.Retryable
}

// RouteClassificationError indicates the controller could not turn the
// inference client's output into one of the known route tokens. Callers fall
// back to the direct-answer path rather than failing the run.
type RouteClassificationError struct {
	Raw   string // model output that failed to classify
	Cause error
}

// Error implements the error interface.
func (e *RouteClassificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("route classification failed: %v", e.Cause)
	}
	return fmt.Sprintf("route classification failed: unrecognized output %q", e.Raw)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *RouteClassificationError) Unwrap() error { return e.Cause }
