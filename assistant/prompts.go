package assistant

import (
	"fmt"
	"strings"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
	"github.com/localmind-ai/localmind/tool"
)

// Route tokens the controller constrains classification to.
const (
	routeResearch = "research"
	routeEmail    = "email"
	routeDirect   = "direct"
)

var routeAlphabet = []string{routeResearch, routeEmail, routeDirect}

const routingInstructions = `You are the dispatcher of a personal assistant.
Classify the user's latest request into exactly one category:

- research: the request needs up-to-date information from the web
- email: the request asks to write or send an email
- direct: anything you can answer from general knowledge alone

Answer with the single category word and nothing else.`

const directInstructions = `You are a helpful personal assistant running on the
user's own machine. Answer the user's request directly and concisely. Do not
mention tools or internal processes.`

const summarizeInstructions = `You are a research assistant. Using only the
search results provided, write a concise answer to the user's question. Cite
the source titles inline where relevant. If the results do not answer the
question, say what is missing instead of guessing.`

const composeInstructions = `You are an email-writing assistant. Draft an email
for the user's request. Reply with a single JSON object and nothing else, in
this exact shape:

{"to": "<recipient address or name>", "subject": "<subject line>", "body": "<email body>"}`

// formatResults renders search hits for the summarize prompt.
func formatResults(results []tool.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}

// affirmatives are the tokens accepted as explicit send confirmation. The
// verb "send" is deliberately absent: the initial request ("send Maria an
// email") must not confirm its own draft.
var affirmatives = map[string]bool{
	"yes":       true,
	"y":         true,
	"yep":       true,
	"sure":      true,
	"ok":        true,
	"okay":      true,
	"confirm":   true,
	"confirmed": true,
	"approve":   true,
	"approved":  true,
	"go ahead":  true,
	"do it":     true,
}

// isAffirmative reports whether the message is an explicit confirmation.
func isAffirmative(message string) bool {
	token := strings.ToLower(strings.TrimSpace(message))
	token = strings.Trim(token, ".!,")
	return affirmatives[token]
}

// summarizeRequest builds the inference request for the summarize node.
func summarizeRequest(state core.RunState, results []tool.SearchResult) inference.Request {
	return inference.Request{
		Instructions: summarizeInstructions,
		Conversation: append(append([]core.Message{}, state.Conversation...),
			core.NewUserMessage("Search results:\n"+formatResults(results))),
	}
}
