package inference

import (
	"context"
	"testing"
	"time"

	"github.com/localmind-ai/localmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = core.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}

func TestDecide_AcceptsAllowedToken(t *testing.T) {
	cases := []string{"research", "Research", " RESEARCH\n", `"research"`, "research."}
	for _, raw := range cases {
		mock := NewMockClient().Enqueue(raw)
		got, err := Decide(context.Background(), mock, Request{}, []string{"research", "email", "direct"}, testPolicy)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, "research", got, "raw %q", raw)
	}
}

func TestDecide_RejectsFreeText(t *testing.T) {
	mock := NewMockClient().Enqueue("I think the user wants research, probably")
	_, err := Decide(context.Background(), mock, Request{}, []string{"research", "email", "direct"}, testPolicy)
	require.Error(t, err)
	f, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureInvalidResponse, f.Kind)
}

func TestCompleteWithRetry_RetryBound(t *testing.T) {
	mock := NewMockClient().
		EnqueueError(core.NewFailure(core.FailureTimeout, "slow")).
		EnqueueError(core.NewFailure(core.FailureTimeout, "slow")).
		EnqueueError(core.NewFailure(core.FailureTimeout, "slow"))

	_, err := CompleteWithRetry(context.Background(), mock, Request{}, testPolicy)
	require.Error(t, err)
	assert.Equal(t, 2, mock.Calls(), "at most MaxAttempts calls issued")
}

func TestCompleteWithRetry_RecoversFromTransient(t *testing.T) {
	mock := NewMockClient().
		EnqueueError(core.NewFailure(core.FailureUnavailable, "refused")).
		Enqueue("hello")

	resp, err := CompleteWithRetry(context.Background(), mock, Request{}, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
}

func TestCompleteWithRetry_NoRetryOnInvalidResponse(t *testing.T) {
	mock := NewMockClient().
		EnqueueError(core.NewFailure(core.FailureInvalidResponse, "garbage")).
		Enqueue("never reached")

	_, err := CompleteWithRetry(context.Background(), mock, Request{}, testPolicy)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Calls())
}

func TestMockClient_CannedByLastMessage(t *testing.T) {
	mock := NewMockClient().AddResponse("hi", "hey there")
	resp, err := mock.Complete(context.Background(), Request{
		Conversation: []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hey there", resp.Text)
}
