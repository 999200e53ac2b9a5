// Package assistant wires the Controller and its capability sub-graphs into a
// single cyclic graph over shared core.RunState. The Controller classifies the
// latest user message onto one of three routes (research, email, direct), the
// chosen sub-graph executes and hands control back, and the Controller's
// completion path guarantees every run ends with a user-visible answer.
package assistant

import (
	"context"
	"fmt"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/graph"
	"github.com/localmind-ai/localmind/inference"
	"github.com/localmind-ai/localmind/logging"
	"github.com/localmind-ai/localmind/tool"
)

// Node names registered in the assistant graph.
const (
	NodeController = "controller"
	NodeSearch     = "search"
	NodeSummarize  = "summarize"
	NodeCompose    = "compose"
	NodeConfirm    = "confirm"
	NodeSend       = "send"
)

// Options configure an Assistant.
type Options struct {
	// Retry is the node-local policy applied to inference and tool calls.
	Retry core.RetryPolicy
	// MaxSteps overrides the engine's step ceiling.
	MaxSteps int
	// Logger receives routing and node diagnostics.
	Logger logging.Logger
}

// Assistant owns the assembled graph and the collaborators its nodes call.
type Assistant struct {
	client inference.Client
	search tool.Tool
	email  tool.Tool
	opts   Options
	graph  *graph.Graph
	runner *graph.Runner
}

// New builds an Assistant around an inference client and the two tool
// adapters. Either tool may be nil when the corresponding capability is not
// deployed; its route then degrades to an explanatory answer.
func New(client inference.Client, searchTool, emailTool tool.Tool, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		Retry:    core.DefaultRetryPolicy,
		MaxSteps: graph.DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &Assistant{client: client, search: searchTool, email: emailTool, opts: opts}
	a.graph = graph.New("assistant").
		AddNode(NodeController, a.controller).
		AddNode(NodeSearch, a.searchNode).
		AddNode(NodeSummarize, a.summarizeNode).
		AddNode(NodeCompose, a.composeNode).
		AddNode(NodeConfirm, a.confirmNode).
		AddNode(NodeSend, a.sendNode).
		SetEntry(NodeController)
	a.runner = graph.NewRunner(func(o *graph.Options) {
		o.MaxSteps = opts.MaxSteps
		o.Logger = opts.Logger
	})
	return a
}

// Graph exposes the assembled graph, mainly for tests and diagnostics.
func (a *Assistant) Graph() *graph.Graph { return a.graph }

// Run executes one full pass over the given state and returns the final
// state. The final user-visible answer is the last agent message.
func (a *Assistant) Run(ctx context.Context, state core.RunState) (core.RunState, error) {
	return a.runner.Execute(ctx, a.graph, state)
}

// Continue seeds a follow-up turn onto a restored state: the new user message
// is appended and the per-turn coordination markers are cleared so the
// Controller classifies afresh. Pending-confirmation context (the draft and
// the awaiting marker) survives, which is what lets a bare "yes" reach the
// send node.
func Continue(state core.RunState, userMessage string) core.RunState {
	next := state.Clone()
	next.Append(core.NewUserMessage(userMessage))
	next.ClearMeta(core.MetaHandledBy)
	next.ClearMeta(core.MetaNeedsAnotherPass)
	next.NextStep = ""
	next.RouteTrace = nil
	next.ToolOutput = nil
	next.Err = nil
	return next
}

// complete is the single exit path. It guarantees a user-visible terminal
// message: run-level failures produce an apology carrying the failure text,
// and a pass that somehow produced no agent message gets a generic fallback.
func (a *Assistant) complete(state core.RunState) (core.RunState, string, error) {
	if state.Err != nil {
		a.opts.Logger.Warn("run completed with failure", "kind", string(state.Err.Kind), "message", state.Err.Message)
		state.Append(core.NewAgentMessage(fmt.Sprintf(
			"I'm sorry, I couldn't finish that request: %s.", state.Err.Message)))
		return state, graph.End, nil
	}
	if state.LastAgentMessage() == "" {
		state.Append(core.NewAgentMessage("I'm sorry, I couldn't produce an answer for that request."))
	}
	return state, graph.End, nil
}
