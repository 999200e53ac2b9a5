package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/localmind-ai/localmind/core"
)

// doJSON issues an HTTP request with a JSON body (optional) and decodes a
// JSON response into out, mapping transport and status failures onto the
// uniform taxonomy shared with the inference client.
func doJSON(ctx context.Context, client *http.Client, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return core.NewFailure(core.FailureInvalidResponse, "encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return core.NewFailure(core.FailureInvalidResponse, "build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, context.DeadlineExceeded):
			return core.NewFailure(core.FailureTimeout, "request timed out: %v", err)
		default:
			// url.Error with Timeout() covers client-level timeouts.
			var uerr interface{ Timeout() bool }
			if errors.As(err, &uerr) && uerr.Timeout() {
				return core.NewFailure(core.FailureTimeout, "request timed out: %v", err)
			}
			return core.NewFailure(core.FailureUnavailable, "remote unreachable: %v", err)
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.NewFailure(core.FailureRateLimited, "remote throttled: %s", resp.Status)
	case resp.StatusCode >= 500:
		return core.NewFailure(core.FailureUnavailable, "remote error: %s", resp.Status)
	case resp.StatusCode >= 400:
		return core.NewFailure(core.FailureInvalidResponse, "remote rejected request: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewFailure(core.FailureUnavailable, "read response: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return core.NewFailure(core.FailureInvalidResponse, "decode response: %v", err)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
