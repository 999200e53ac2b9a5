// Package store defines the persistence contract for runs: conversation
// state keyed by run id plus the status descriptors the async boundary
// exposes. The in-memory implementation serves tests and demos; store/sqlite
// persists across restarts.
package store

import (
	"context"
	"errors"

	"github.com/localmind-ai/localmind/core"
)

// ErrNotFound is returned when no run or descriptor exists under the id.
var ErrNotFound = errors.New("store: not found")

// RunStore persists run state and descriptors. Implementations must be safe
// for concurrent use; the boundary writes from several worker goroutines.
type RunStore interface {
	// SaveRun stores the full state for a run, replacing any previous state.
	SaveRun(ctx context.Context, runID string, state core.RunState) error

	// LoadRun returns the stored state or ErrNotFound.
	LoadRun(ctx context.Context, runID string) (core.RunState, error)

	// AppendMessage adds one message to a stored run's conversation.
	AppendMessage(ctx context.Context, runID string, msg core.Message) error

	// PutDescriptor stores a descriptor snapshot, replacing any previous one.
	PutDescriptor(ctx context.Context, d core.RunDescriptor) error

	// GetDescriptor returns the stored descriptor or ErrNotFound.
	GetDescriptor(ctx context.Context, runID string) (core.RunDescriptor, error)
}
