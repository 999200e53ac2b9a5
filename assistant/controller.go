package assistant

import (
	"context"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
)

// controller is the entry node and the only node that classifies. Re-entry is
// idempotent: a sub-graph that completed a pass without requesting another one
// ends the run instead of being dispatched again.
func (a *Assistant) controller(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	if state.Err != nil {
		return a.complete(state)
	}

	// A restored pending-confirmation state answered affirmatively goes
	// straight to send; the draft is already in the state.
	if state.Marked(core.MetaAwaitingConfirmation) && isAffirmative(state.LastUserMessage()) {
		state.ClearMeta(core.MetaAwaitingConfirmation)
		return state, NodeConfirm, nil
	}

	if handledBy := state.GetMeta(core.MetaHandledBy); handledBy != "" {
		if state.Marked(core.MetaNeedsAnotherPass) {
			state.ClearMeta(core.MetaNeedsAnotherPass)
			return state, a.routeTarget(handledBy), nil
		}
		return a.complete(state)
	}

	// Classifying afresh abandons any pending confirmation: the user moved
	// on without approving the draft.
	state.ClearMeta(core.MetaAwaitingConfirmation)

	route, err := inference.Decide(ctx, a.client, inference.Request{
		Instructions: routingInstructions,
		Conversation: state.Conversation,
	}, routeAlphabet, a.opts.Retry)
	if err != nil {
		if f, ok := core.AsFailure(err); ok && f.Kind == core.FailureInvalidResponse {
			// Decide hands back the raw text on mismatch; fall back to
			// a direct answer rather than failing the run.
			cls := &core.RouteClassificationError{Raw: route, Cause: err}
			a.opts.Logger.Warn("route classification fell back to direct", "error", cls.Error())
			return a.direct(ctx, state)
		}
		if f, ok := core.AsFailure(err); ok {
			state.Err = f
		} else {
			state.Err = core.NewFailure(core.FailureUnavailable, "routing: %v", err)
		}
		return a.complete(state)
	}

	a.opts.Logger.Info("request routed", "route", route)
	if route == routeDirect {
		return a.direct(ctx, state)
	}
	return state, a.routeTarget(route), nil
}

// routeTarget maps a route token onto the sub-graph entry node.
func (a *Assistant) routeTarget(route string) string {
	switch route {
	case routeResearch:
		return NodeSearch
	case routeEmail:
		return NodeCompose
	default:
		return NodeController
	}
}

// direct answers from the model alone. It never touches a tool adapter.
func (a *Assistant) direct(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	resp, err := inference.CompleteWithRetry(ctx, a.client, inference.Request{
		Instructions: directInstructions,
		Conversation: state.Conversation,
	}, a.opts.Retry)
	if err != nil {
		if f, ok := core.AsFailure(err); ok {
			state.Err = f
		} else {
			state.Err = core.NewFailure(core.FailureUnavailable, "direct answer: %v", err)
		}
		return a.complete(state)
	}
	state.Append(core.NewAgentMessage(resp.Text))
	state.SetMeta(core.MetaHandledBy, routeDirect)
	return a.complete(state)
}
