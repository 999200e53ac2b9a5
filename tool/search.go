package tool

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/localmind-ai/localmind/core"
)

// SearchResult is one hit returned by the search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchOptions configure a SearchTool.
type SearchOptions struct {
	// Endpoint is the provider's query URL; the query is passed as the
	// "q" parameter and the result cap as "limit".
	Endpoint string
	// HTTPClient allows injecting a custom client (tests, pooling).
	HTTPClient *http.Client
	// MaxResults caps results per query when the caller does not.
	MaxResults int
	// Timeout bounds a single provider round trip.
	Timeout time.Duration
}

// SearchTool wraps an HTTP search provider behind the Tool contract. The
// concrete provider API is intentionally minimal: a GET returning a JSON
// object with a "results" array.
type SearchTool struct {
	opts SearchOptions
}

// NewSearchTool constructs a search adapter.
func NewSearchTool(endpoint string, optFns ...func(o *SearchOptions)) *SearchTool {
	opts := SearchOptions{
		Endpoint:   endpoint,
		MaxResults: 5,
		Timeout:    15 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &SearchTool{opts: opts}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search the web and return a list of result titles, URLs and snippets"
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string"},
			"max_results": map[string]any{"type": "integer"},
		},
		"required": []string{"query"},
	}
}

// Invoke implements Tool. The result payload is []SearchResult; an empty
// slice is a successful outcome, not a failure.
func (t *SearchTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if err := ValidateArgs(args, t.Parameters()); err != nil {
		return nil, core.NewFailure(core.FailureInvalidResponse, "web_search: %v", err)
	}
	query := stringArg(args, "query")
	limit := intArg(args, "max_results", t.opts.MaxResults)

	u, err := url.Parse(t.opts.Endpoint)
	if err != nil {
		return nil, core.NewFailure(core.FailureInvalidResponse, "web_search: bad endpoint: %v", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := doJSON(ctx, t.opts.HTTPClient, http.MethodGet, u.String(), nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) > limit {
		payload.Results = payload.Results[:limit]
	}
	return payload.Results, nil
}
