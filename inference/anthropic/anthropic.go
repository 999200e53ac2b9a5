// Package anthropic implements inference.Client on the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
)

// Options configure the Anthropic client adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// Timeout bounds a single request. Zero leaves only the caller's
	// context deadline in effect.
	Timeout time.Duration
}

// Client wraps the Anthropic Messages API behind inference.Client.
type Client struct {
	client *anthropic.Client
	opts   Options
}

// New creates a client from options.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Client{client: &client, opts: opts}
}

// NewFromClient wraps an existing SDK client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// Complete implements inference.Client.
func (c *Client) Complete(ctx context.Context, req inference.Request) (*inference.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		Messages:    c.buildMessages(req.Conversation),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, c.mapError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return nil, core.NewFailure(core.FailureInvalidResponse, "message contained no text blocks")
	}
	return &inference.Response{Text: sb.String(), Model: string(resp.Model)}, nil
}

// Info implements inference.Client.
func (c *Client) Info() inference.Info {
	return inference.Info{Name: string(c.opts.Model), Provider: "anthropic"}
}

// buildMessages converts the role-tagged conversation to Messages API turns.
// Tool output is folded into user turns; the orchestrator resolves tool calls
// itself rather than using the API's tool_use blocks.
func (c *Client) buildMessages(conversation []core.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(conversation))
	for _, m := range conversation {
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		case core.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf("[tool result] %s", m.Text))))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	return messages
}

// mapError normalizes SDK and transport errors into the failure taxonomy.
func (c *Client) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewFailure(core.FailureTimeout, "anthropic request timed out: %v", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return core.NewFailure(core.FailureRateLimited, "anthropic rate limited: %v", err)
		case apierr.StatusCode >= 500:
			return core.NewFailure(core.FailureUnavailable, "anthropic server error: %v", err)
		default:
			return core.NewFailure(core.FailureInvalidResponse, "anthropic rejected request: %v", err)
		}
	}
	return core.NewFailure(core.FailureUnavailable, "anthropic unreachable: %v", err)
}
