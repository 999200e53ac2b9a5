package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
	"github.com/localmind-ai/localmind/tool"
)

// emailDraft is the structured output the compose prompt asks for.
type emailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// composeNode drafts the email with the model and stashes the draft in state
// meta so it survives a confirmation round trip through the store.
func (a *Assistant) composeNode(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	if a.email == nil {
		state.Append(core.NewAgentMessage("I can't send emails right now: no email provider is configured."))
		state.SetMeta(core.MetaHandledBy, routeEmail)
		return state, NodeController, nil
	}

	// A draft surviving from a previous turn is kept as-is; redrafting
	// would discard what the user already saw.
	if state.GetMeta(core.MetaEmailDraft) != "" {
		return state, NodeConfirm, nil
	}

	resp, err := inference.CompleteWithRetry(ctx, a.client, inference.Request{
		Instructions: composeInstructions,
		Conversation: state.Conversation,
	}, a.opts.Retry)
	if err != nil {
		if f, ok := core.AsFailure(err); ok {
			state.Err = f
		} else {
			state.Err = core.NewFailure(core.FailureUnavailable, "compose: %v", err)
		}
		return state, NodeController, nil
	}

	draft := parseDraft(resp.Text)
	state.SetMeta(core.MetaEmailRecipient, draft.To)
	state.SetMeta(core.MetaEmailSubject, draft.Subject)
	state.SetMeta(core.MetaEmailDraft, draft.Body)
	return state, NodeConfirm, nil
}

// parseDraft decodes the model's JSON draft, tolerating code fences. A
// response that is not valid JSON degrades to a body-only draft instead of
// failing the run; the confirmation step shows the user exactly what would be
// sent either way.
func parseDraft(text string) emailDraft {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var draft emailDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil || draft.Body == "" {
		return emailDraft{Subject: "(no subject)", Body: strings.TrimSpace(text)}
	}
	if draft.Subject == "" {
		draft.Subject = "(no subject)"
	}
	return draft
}

// confirmNode gates sending on an explicit user confirmation. Without one the
// draft is presented, the awaiting marker set, and control handed back so the
// controller completes the run; the actual send happens on a later turn.
func (a *Assistant) confirmNode(_ context.Context, state core.RunState) (core.RunState, string, error) {
	if isAffirmative(state.LastUserMessage()) {
		return state, NodeSend, nil
	}

	state.SetMeta(core.MetaAwaitingConfirmation, core.MarkSet)
	state.SetMeta(core.MetaHandledBy, routeEmail)
	state.Append(core.NewAgentMessage(fmt.Sprintf(
		"Here's the draft:\n\nTo: %s\nSubject: %s\n\n%s\n\nReply \"yes\" to send it.",
		state.GetMeta(core.MetaEmailRecipient),
		state.GetMeta(core.MetaEmailSubject),
		state.GetMeta(core.MetaEmailDraft))))
	return state, NodeController, nil
}

// sendNode dispatches the confirmed draft. A provider failure lands in the
// run-level error for the controller's completion path; the sub-graph never
// retries a send on its own beyond the adapter's bounded policy.
func (a *Assistant) sendNode(ctx context.Context, state core.RunState) (core.RunState, string, error) {
	rec := tool.Call(ctx, a.email, map[string]any{
		"to":      state.GetMeta(core.MetaEmailRecipient),
		"subject": state.GetMeta(core.MetaEmailSubject),
		"body":    state.GetMeta(core.MetaEmailDraft),
	}, a.opts.Retry)
	state.Append(core.NewToolMessage(tool.Summary(rec), rec))
	state.SetMeta(core.MetaHandledBy, routeEmail)

	if rec.Failed() {
		state.Err = rec.Failure
		return state, NodeController, nil
	}

	recipient := state.GetMeta(core.MetaEmailRecipient)
	state.ClearMeta(core.MetaEmailDraft)
	state.ClearMeta(core.MetaEmailRecipient)
	state.ClearMeta(core.MetaEmailSubject)
	state.ClearMeta(core.MetaAwaitingConfirmation)
	state.Append(core.NewAgentMessage(fmt.Sprintf("Your email to %s has been sent.", recipient)))
	return state, NodeController, nil
}
