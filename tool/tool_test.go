package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/localmind-ai/localmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = core.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}

func sumTool() *FunctionTool {
	return NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)
}

func TestFunctionTool_Invoke(t *testing.T) {
	result, err := sumTool().Invoke(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationFailureNotRetryable(t *testing.T) {
	_, err := sumTool().Invoke(context.Background(), map[string]any{"a": 2.0})
	require.Error(t, err)
	f, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureInvalidResponse, f.Kind)
	assert.False(t, f.Retryable)
}

func TestFunctionTool_RejectsUnknownArgument(t *testing.T) {
	_, err := sumTool().Invoke(context.Background(), map[string]any{"a": 1.0, "b": 2.0, "c": 3.0})
	require.Error(t, err)
}

func TestFunctionTool_WrapsPlainErrors(t *testing.T) {
	boom := NewFunctionTool("boom", "always fails", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("wire snapped")
	})
	_, err := boom.Invoke(context.Background(), map[string]any{})
	f, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureUnavailable, f.Kind)
	assert.True(t, f.Retryable)
}

func TestCall_RecordsSuccess(t *testing.T) {
	rec := Call(context.Background(), sumTool(), map[string]any{"a": 1.0, "b": 2.0}, fastRetry)
	require.NotNil(t, rec)
	assert.False(t, rec.Failed())
	assert.Equal(t, "calculate_sum", rec.Tool)
	assert.Equal(t, 3.0, rec.Result)
	assert.NotEmpty(t, rec.ID)
}

func TestCall_RetriesRetryableFailures(t *testing.T) {
	attempts := 0
	flaky := NewFunctionTool("flaky", "fails once", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(context.Context, map[string]any) (any, error) {
		attempts++
		if attempts == 1 {
			return nil, core.NewFailure(core.FailureTimeout, "slow")
		}
		return "ok", nil
	})

	rec := Call(context.Background(), flaky, map[string]any{}, fastRetry)
	assert.False(t, rec.Failed())
	assert.Equal(t, 2, attempts)
}

func TestCall_BoundsAttemptsAndRecordsFailure(t *testing.T) {
	attempts := 0
	dead := NewFunctionTool("dead", "always times out", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(context.Context, map[string]any) (any, error) {
		attempts++
		return nil, core.NewFailure(core.FailureTimeout, "deadline hit")
	})

	rec := Call(context.Background(), dead, map[string]any{}, fastRetry)
	require.True(t, rec.Failed())
	assert.Equal(t, core.FailureTimeout, rec.Failure.Kind)
	assert.Equal(t, 2, attempts, "at most the configured number of attempts")
}

func TestValidateArgs_TypeChecks(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count":  map[string]any{"type": "integer"},
			"active": map[string]any{"type": "boolean"},
			"mode":   map[string]any{"type": "string", "enum": []string{"fast", "slow"}},
		},
	}

	assert.NoError(t, ValidateArgs(map[string]any{"count": 3, "active": true, "mode": "fast"}, schema))
	assert.NoError(t, ValidateArgs(map[string]any{"count": 3.0}, schema), "whole float accepted as integer")
	assert.Error(t, ValidateArgs(map[string]any{"count": 3.5}, schema))
	assert.Error(t, ValidateArgs(map[string]any{"active": "yes"}, schema))
	assert.Error(t, ValidateArgs(map[string]any{"mode": "warp"}, schema))
}

func TestValidateArgs_JSONDecodedSchema(t *testing.T) {
	// A schema stored and reloaded as JSON comes back with []any where the
	// literal form uses []string; both shapes must be enforced.
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"mode":  {"type": "string", "enum": ["fast", "slow"]}
		},
		"required": ["query"]
	}`), &schema))

	assert.NoError(t, ValidateArgs(map[string]any{"query": "x", "mode": "fast"}, schema))

	err := ValidateArgs(map[string]any{"mode": "fast"}, schema)
	require.Error(t, err, "required list decoded from JSON is still enforced")
	assert.Contains(t, err.Error(), "query")

	assert.Error(t, ValidateArgs(map[string]any{"query": "x", "mode": "warp"}, schema),
		"enum decoded from JSON is still enforced")
}
