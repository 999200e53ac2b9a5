package tool

import (
	"context"

	"github.com/localmind-ai/localmind/core"
)

// FunctionTool adapts a plain Go function into a Tool. Arguments are
// validated against the declared schema before the function runs; validation
// failures surface as InvalidResponse so they are never auto-retried.
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the capability description.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Invoke validates args then runs the wrapped function. Non-Failure errors
// from the function are wrapped as Unavailable, the conservative retryable
// default for side-effecting calls whose failure mode is unknown.
func (t *FunctionTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if err := ValidateArgs(args, t.parameters); err != nil {
		return nil, core.NewFailure(core.FailureInvalidResponse, "%s: %v", t.name, err)
	}
	result, err := t.fn(ctx, args)
	if err != nil {
		if _, ok := core.AsFailure(err); ok {
			return nil, err
		}
		return nil, core.NewFailure(core.FailureUnavailable, "%s: %v", t.name, err)
	}
	return result, nil
}
