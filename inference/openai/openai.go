// Package openai implements inference.Client on the OpenAI Chat Completions
// API. A custom base URL points it at any OpenAI-compatible server, which is
// how Localmind talks to a local llama.cpp-style inference server.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI client adapter. Fields mirror the subset of
// Chat Completion parameters the orchestrator needs; extend via functional
// options without breaking callers.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	// BaseURL overrides the API endpoint, e.g. "http://127.0.0.1:8080/v1"
	// for a local server. Empty uses the official endpoint.
	BaseURL string
	// APIKey may be empty for local servers that skip authentication.
	APIKey string
	// Stop sequences terminate generation server-side.
	Stop []string
	// Timeout bounds a single completion request. Zero leaves only the
	// caller's context deadline in effect.
	Timeout time.Duration
}

// Client wraps the OpenAI Chat Completions API behind inference.Client.
type Client struct {
	client openai.Client
	opts   Options
}

// New creates a client from options.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &Client{client: openai.NewClient(reqOpts...), opts: opts}
}

// Complete implements inference.Client.
func (c *Client) Complete(ctx context.Context, req inference.Request) (*inference.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            c.buildMessages(req),
		Model:               openai.ChatModel(c.opts.Model),
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	}
	if len(c.opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: c.opts.Stop}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, c.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewFailure(core.FailureInvalidResponse, "completion contained no choices")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, core.NewFailure(core.FailureInvalidResponse, "completion contained no text")
	}
	return &inference.Response{Text: text, Model: resp.Model}, nil
}

// Info implements inference.Client.
func (c *Client) Info() inference.Info {
	return inference.Info{Name: c.opts.Model, Provider: "openai"}
}

// buildMessages converts the role-tagged conversation into chat messages.
// Tool messages are rendered as user-visible context rather than the API's
// native tool role: the orchestrator resolves tool calls itself, so from the
// model's perspective tool output is just more context.
func (c *Client) buildMessages(req inference.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Conversation)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, m := range req.Conversation {
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, openai.AssistantMessage(m.Text))
		case core.RoleTool:
			messages = append(messages, openai.UserMessage(fmt.Sprintf("[tool result] %s", m.Text)))
		default:
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	return messages
}

// mapError normalizes SDK and transport errors into the uniform failure
// taxonomy so nodes can apply the shared retry policy.
func (c *Client) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewFailure(core.FailureTimeout, "openai request timed out: %v", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return core.NewFailure(core.FailureRateLimited, "openai rate limited: %v", err)
		case apierr.StatusCode >= 500:
			return core.NewFailure(core.FailureUnavailable, "openai server error: %v", err)
		default:
			return core.NewFailure(core.FailureInvalidResponse, "openai rejected request: %v", err)
		}
	}
	// Connection-level failures (refused, DNS, reset) land here.
	return core.NewFailure(core.FailureUnavailable, "openai unreachable: %v", err)
}
