package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localmind-ai/localmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	state := core.NewRunState("hello")
	state.Append(core.NewAgentMessage("hi there"))
	require.NoError(t, s.SaveRun(ctx, "run-1", state))

	loaded, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Conversation, 2)
	assert.Equal(t, "hi there", loaded.LastAgentMessage())
}

func TestInMemoryStore_LoadMissing(t *testing.T) {
	_, err := NewInMemoryStore().LoadRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInMemoryStore_ReadIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.SaveRun(ctx, "run-1", core.NewRunState("original")))

	loaded, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	loaded.Append(core.NewAgentMessage("mutation"))
	loaded.SetMeta("k", "v")

	again, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, again.Conversation, 1)
	assert.Empty(t, again.GetMeta("k"))
}

func TestInMemoryStore_AppendMessage(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.SaveRun(ctx, "run-1", core.NewRunState("q")))

	require.NoError(t, s.AppendMessage(ctx, "run-1", core.NewAgentMessage("a")))
	assert.True(t, errors.Is(s.AppendMessage(ctx, "missing", core.NewAgentMessage("a")), ErrNotFound))

	loaded, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.LastAgentMessage())
}

func TestInMemoryStore_Descriptors(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	d := core.NewRunDescriptor("run-1")
	require.NoError(t, s.PutDescriptor(ctx, d))

	got, err := s.GetDescriptor(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.RunPending, got.Status)
	assert.WithinDuration(t, time.Now().UTC(), got.SubmittedAt, time.Minute)

	_, err = s.GetDescriptor(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
