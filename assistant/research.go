package assistant

import (
	"context"
	"encoding/json"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
	"github.com/localmind-ai/localmind/tool"
)

// searchNode queries the search adapter with the latest user message. A tool
// failure is recorded on the call record and carried forward as an
// error-marked tool result, not escalated to a run failure: the summarize
// node decides what the user hears about it.
func (a *Assistant) searchNode(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	if a.search == nil {
		state.Append(core.NewAgentMessage("I can't look that up right now: web search is not available."))
		state.SetMeta(core.MetaHandledBy, routeResearch)
		return state, NodeController, nil
	}

	rec := tool.Call(ctx, a.search, map[string]any{"query": state.LastUserMessage()}, a.opts.Retry)
	a.opts.Logger.Info("search completed", "failed", rec.Failed(), "latency_ms", rec.Latency.Milliseconds())

	state.ToolOutput = rec
	state.Append(core.NewToolMessage(tool.Summary(rec), rec))
	return state, NodeSummarize, nil
}

// summarizeNode turns the captured tool output into the final answer and
// hands control back to the controller.
func (a *Assistant) summarizeNode(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	rec := state.ToolOutput
	state.ToolOutput = nil // consumed here
	state.SetMeta(core.MetaHandledBy, routeResearch)

	if rec == nil || rec.Failed() {
		msg := "I tried to search the web but the search service was not reachable. Please try again in a moment."
		if rec != nil && rec.Failure != nil {
			a.opts.Logger.Warn("summarizing over failed search", "kind", string(rec.Failure.Kind))
		}
		state.Append(core.NewAgentMessage(msg))
		return state, NodeController, nil
	}

	results := searchResults(rec.Result)
	if len(results) == 0 {
		state.Append(core.NewAgentMessage("I searched the web but found no results for that. You could try rephrasing the question."))
		return state, NodeController, nil
	}

	resp, err := inference.CompleteWithRetry(ctx, a.client, summarizeRequest(state, results), a.opts.Retry)
	if err != nil {
		if f, ok := core.AsFailure(err); ok {
			state.Err = f
		} else {
			state.Err = core.NewFailure(core.FailureUnavailable, "summarize: %v", err)
		}
		return state, NodeController, nil
	}
	state.Append(core.NewAgentMessage(resp.Text))
	return state, NodeController, nil
}

// searchResults recovers the typed result slice from a tool call payload. The
// in-process adapter returns []tool.SearchResult directly; a record reloaded
// from the store comes back as generic JSON and is re-decoded.
func searchResults(payload any) []tool.SearchResult {
	switch v := payload.(type) {
	case []tool.SearchResult:
		return v
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var results []tool.SearchResult
		if err := json.Unmarshal(data, &results); err != nil {
			return nil
		}
		return results
	default:
		return nil
	}
}
