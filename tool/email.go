package tool

import (
	"context"
	"net/http"
	"time"

	"github.com/localmind-ai/localmind/core"
)

// DeliveryReceipt is the provider's acknowledgement of a dispatched message.
type DeliveryReceipt struct {
	MessageID string `json:"message_id"`
	Accepted  bool   `json:"accepted"`
}

// EmailOptions configure an EmailTool.
type EmailOptions struct {
	// Endpoint is the provider's send URL accepting a JSON POST.
	Endpoint string
	// HTTPClient allows injecting a custom client.
	HTTPClient *http.Client
	// Timeout bounds a single provider round trip.
	Timeout time.Duration
}

// EmailTool wraps an HTTP email provider behind the Tool contract.
type EmailTool struct {
	opts EmailOptions
}

// NewEmailTool constructs an email adapter.
func NewEmailTool(endpoint string, optFns ...func(o *EmailOptions)) *EmailTool {
	opts := EmailOptions{Endpoint: endpoint, Timeout: 15 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &EmailTool{opts: opts}
}

// Name implements Tool.
func (t *EmailTool) Name() string { return "send_email" }

// Description implements Tool.
func (t *EmailTool) Description() string {
	return "Send an email to a recipient with a subject and body"
}

// Parameters implements Tool.
func (t *EmailTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string"},
			"subject": map[string]any{"type": "string"},
			"body":    map[string]any{"type": "string"},
		},
		"required": []string{"to", "body"},
	}
}

// Invoke implements Tool. The result payload is a DeliveryReceipt.
func (t *EmailTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if err := ValidateArgs(args, t.Parameters()); err != nil {
		return nil, core.NewFailure(core.FailureInvalidResponse, "send_email: %v", err)
	}

	request := map[string]string{
		"to":      stringArg(args, "to"),
		"subject": stringArg(args, "subject"),
		"body":    stringArg(args, "body"),
	}
	var receipt DeliveryReceipt
	if err := doJSON(ctx, t.opts.HTTPClient, http.MethodPost, t.opts.Endpoint, request, &receipt); err != nil {
		return nil, err
	}
	if !receipt.Accepted {
		return nil, core.NewFailure(core.FailureUnavailable, "send_email: provider declined message %s", receipt.MessageID)
	}
	return receipt, nil
}
