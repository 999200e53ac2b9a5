package graph

import (
	"context"
	"fmt"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/logging"
)

// DefaultMaxSteps allows a handful of tool-call rounds through the controller
// and both sub-graphs with margin to spare.
const DefaultMaxSteps = 24

// Options configures a Runner.
type Options struct {
	// MaxSteps is the step-count ceiling per run. Exceeding it aborts the
	// run with core.ErrStepLimitExceeded.
	MaxSteps int
	// Logger receives node transition records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner executes graphs. It is stateless apart from configuration and safe
// for concurrent use across runs; within one run execution is strictly
// sequential, so each node sees the full effect of its predecessor.
type Runner struct {
	maxSteps int
	logger   logging.Logger
}

// NewRunner constructs a Runner with optional overrides.
func NewRunner(optFns ...func(o *Options)) *Runner {
	opts := Options{MaxSteps: DefaultMaxSteps, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{maxSteps: opts.MaxSteps, logger: opts.Logger}
}

// Execute runs the graph from its entry node until a node selects End or the
// step ceiling is reached. The returned state reflects every completed node,
// including on failure, so callers can persist partial progress and surface
// diagnostics from the route trace.
//
// Failure modes:
//   - a selection naming an unregistered node returns core.ErrInvalidRoute
//     (fail closed, never retried)
//   - more than MaxSteps node executions returns core.ErrStepLimitExceeded
//   - ctx cancellation or deadline expiry returns the context error
func (r *Runner) Execute(ctx context.Context, g *Graph, state core.RunState) (core.RunState, error) {
	if err := g.Validate(); err != nil {
		return state, err
	}

	current := g.entry
	for step := 1; ; step++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if step > r.maxSteps {
			return state, fmt.Errorf("graph %q: %d steps: %w", g.name, r.maxSteps, core.ErrStepLimitExceeded)
		}

		node, ok := g.nodes[current]
		if !ok {
			return state, fmt.Errorf("graph %q: selection %q: %w", g.name, current, core.ErrInvalidRoute)
		}

		state.RouteTrace = append(state.RouteTrace, current)
		r.logger.Debug("node executing", "graph", g.name, "node", current, "step", step)

		next := ""
		var err error
		state, next, err = node(ctx, state)
		if err != nil {
			return state, fmt.Errorf("graph %q: node %q: %w", g.name, current, err)
		}

		if next == End {
			state.NextStep = ""
			r.logger.Debug("run complete", "graph", g.name, "steps", step)
			return state, nil
		}
		state.NextStep = next
		current = next
	}
}
