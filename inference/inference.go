// Package inference defines the uniform client contract wrapping a remote
// language-model completion capability. Concrete backends live in the openai
// and anthropic sub-packages; MockClient serves tests and examples.
//
// The package also enforces the structured-decision output contract: when a
// caller needs the model to pick from a fixed alphabet (controller routing,
// argument extraction), Decide rejects any deviation as an InvalidResponse
// failure instead of passing free text into a decision path.
package inference

import (
	"context"
	"strings"

	"github.com/localmind-ai/localmind/core"
)

// Request captures the normalized model input produced by graph nodes.
type Request struct {
	// Instructions is the fixed instruction template prepended as the
	// system prompt.
	Instructions string
	// Conversation is the role-tagged history the model completes against.
	Conversation []core.Message
}

// Response is a completed (non-streaming) model output.
type Response struct {
	Text  string
	Model string
}

// Info contains metadata about a client implementation.
type Info struct {
	Name     string // model identifier
	Provider string // "openai", "anthropic", "mock", ...
}

// Client is the minimal interface nodes use to drive generation. Latency is
// highly variable (local inference can take minutes); implementations must
// honor ctx cancellation and surface failures as *core.Failure so callers can
// apply the uniform retry policy.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// CompleteWithRetry invokes the client under the node-local retry policy.
// Only retryable failure kinds (timeout, unavailable, rate limited) are
// retried; InvalidResponse surfaces immediately.
func CompleteWithRetry(ctx context.Context, c Client, req Request, policy core.RetryPolicy) (*Response, error) {
	var resp *Response
	err := core.Retry(ctx, policy, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.Complete(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Decide asks the model to answer with exactly one token from the allowed
// alphabet. The raw output is normalized (trimmed, lowercased, stripped of
// quoting and trailing punctuation) before matching; anything that still
// fails to match is returned as an InvalidResponse failure together with the
// raw text, never as an implicit instruction.
func Decide(ctx context.Context, c Client, req Request, allowed []string, policy core.RetryPolicy) (string, error) {
	resp, err := CompleteWithRetry(ctx, c, req, policy)
	if err != nil {
		return "", err
	}
	token := normalizeDecision(resp.Text)
	for _, a := range allowed {
		if token == a {
			return a, nil
		}
	}
	return resp.Text, core.NewFailure(core.FailureInvalidResponse,
		"decision %q not in allowed set %v", resp.Text, allowed)
}

// normalizeDecision reduces model output to a comparable token: first line,
// lowercase, surrounding whitespace/quotes/backticks and trailing period
// removed.
func normalizeDecision(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.ToLower(line))
	line = strings.Trim(line, "\"'`")
	line = strings.TrimSuffix(line, ".")
	return strings.TrimSpace(line)
}
