package boundary

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoEngine answers immediately.
type echoEngine struct {
	runs atomic.Int32
}

func (e *echoEngine) Run(_ context.Context, state core.RunState) (core.RunState, error) {
	e.runs.Add(1)
	state.Append(core.NewAgentMessage("echo: " + state.LastUserMessage()))
	return state, nil
}

// blockingEngine holds the run until its context ends or release is closed.
type blockingEngine struct {
	runs    atomic.Int32
	release chan struct{}
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{release: make(chan struct{})}
}

func (e *blockingEngine) Run(ctx context.Context, state core.RunState) (core.RunState, error) {
	e.runs.Add(1)
	select {
	case <-ctx.Done():
		return state, ctx.Err()
	case <-e.release:
		state.Append(core.NewAgentMessage("released"))
		return state, nil
	}
}

// stubbornEngine ignores its context entirely and blocks until released,
// standing in for a node stuck in a non-cooperative call.
type stubbornEngine struct {
	runs    atomic.Int32
	release chan struct{}
}

func newStubbornEngine() *stubbornEngine {
	return &stubbornEngine{release: make(chan struct{})}
}

func (e *stubbornEngine) Run(_ context.Context, state core.RunState) (core.RunState, error) {
	e.runs.Add(1)
	<-e.release
	state.Append(core.NewAgentMessage("late result"))
	return state, nil
}

// failingEngine reports a run-level failure through state.Err, the way the
// assistant surfaces a tool dispatch failure.
type failingEngine struct{}

func (failingEngine) Run(_ context.Context, state core.RunState) (core.RunState, error) {
	state.Err = core.NewFailure(core.FailureUnavailable, "provider down")
	state.Append(core.NewAgentMessage("I'm sorry, I couldn't finish that request."))
	return state, nil
}

func waitTerminal(t *testing.T, b *Boundary, runID string) core.RunDescriptor {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		d, ok := b.Status(runID)
		require.True(t, ok)
		if d.Status.Terminal() {
			return d
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s never reached a terminal state", runID)
	return core.RunDescriptor{}
}

func TestSubmitIsNonBlocking(t *testing.T) {
	engine := newBlockingEngine()
	b := New(engine)

	start := time.Now()
	runID, err := b.Submit(context.Background(), "slow request")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	d, ok := b.Status(runID)
	require.True(t, ok)
	assert.False(t, d.Status.Terminal())

	close(engine.release)
	d = waitTerminal(t, b, runID)
	assert.Equal(t, core.RunSucceeded, d.Status)
	assert.Equal(t, "released", d.FinalMessage)
	require.NotNil(t, d.StartedAt)
	require.NotNil(t, d.FinishedAt)
}

func TestRunSucceedsWithFinalMessage(t *testing.T) {
	b := New(&echoEngine{})
	runID, err := b.Submit(context.Background(), "hello")
	require.NoError(t, err)

	d := waitTerminal(t, b, runID)
	assert.Equal(t, core.RunSucceeded, d.Status)
	assert.Equal(t, "echo: hello", d.FinalMessage)
	assert.Empty(t, d.Error)
}

func TestRunTimesOut(t *testing.T) {
	engine := newBlockingEngine()
	b := New(engine, func(o *Options) { o.Timeout = 30 * time.Millisecond })

	runID, err := b.Submit(context.Background(), "search for something slow")
	require.NoError(t, err)

	d := waitTerminal(t, b, runID)
	assert.Equal(t, core.RunTimedOut, d.Status)
	assert.Empty(t, d.FinalMessage, "a timed out run reports no partial success")
	assert.NotEmpty(t, d.Error)
}

func TestCancelRunningRun(t *testing.T) {
	engine := newBlockingEngine()
	b := New(engine)

	runID, err := b.Submit(context.Background(), "to be cancelled")
	require.NoError(t, err)

	// Wait for the run to occupy its slot before cancelling.
	deadline := time.Now().Add(5 * time.Second)
	for engine.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	assert.True(t, b.Cancel(runID))
	d := waitTerminal(t, b, runID)
	assert.Equal(t, core.RunCancelled, d.Status)

	assert.False(t, b.Cancel(runID), "terminal runs cannot be cancelled again")
}

func TestCancelPendingRunNeverExecutes(t *testing.T) {
	engine := newBlockingEngine()
	b := New(engine, func(o *Options) { o.WorkerSlots = 1 })

	first, err := b.Submit(context.Background(), "occupies the slot")
	require.NoError(t, err)
	deadline := time.Now().Add(5 * time.Second)
	for engine.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	second, err := b.Submit(context.Background(), "queued")
	require.NoError(t, err)
	require.True(t, b.Cancel(second))

	d, ok := b.Status(second)
	require.True(t, ok)
	assert.Equal(t, core.RunCancelled, d.Status)

	close(engine.release)
	waitTerminal(t, b, first)
	b.Wait()
	assert.Equal(t, int32(1), engine.runs.Load(), "the cancelled pending run never executed")
}

func TestQueuedRunTimesOutWithoutASlot(t *testing.T) {
	engine := newStubbornEngine()
	b := New(engine, func(o *Options) {
		o.WorkerSlots = 1
		o.Timeout = 30 * time.Millisecond
	})
	defer close(engine.release)

	_, err := b.Submit(context.Background(), "occupies the slot")
	require.NoError(t, err)
	deadline := time.Now().Add(5 * time.Second)
	for engine.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// The queued run's clock starts at submission, not at slot acquisition.
	second, err := b.Submit(context.Background(), "never gets a slot")
	require.NoError(t, err)

	d := waitTerminal(t, b, second)
	assert.Equal(t, core.RunTimedOut, d.Status)
	assert.Nil(t, d.StartedAt)
	assert.Equal(t, int32(1), engine.runs.Load(), "the expired run never executed")
}

func TestCancelWinsOverLateResult(t *testing.T) {
	engine := newStubbornEngine()
	b := New(engine)

	runID, err := b.Submit(context.Background(), "cancel me mid-flight")
	require.NoError(t, err)
	deadline := time.Now().Add(5 * time.Second)
	for engine.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	require.True(t, b.Cancel(runID))
	// The engine ignores the context and completes anyway; the promised
	// cancellation still wins and the late result is discarded.
	close(engine.release)

	d := waitTerminal(t, b, runID)
	assert.Equal(t, core.RunCancelled, d.Status)
	assert.Empty(t, d.FinalMessage)
}

func TestResubmissionCreatesNewRunID(t *testing.T) {
	b := New(&echoEngine{})
	first, err := b.Submit(context.Background(), "same input")
	require.NoError(t, err)
	second, err := b.Submit(context.Background(), "same input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRunLevelFailureIsFailedWithMessage(t *testing.T) {
	b := New(failingEngine{})
	runID, err := b.Submit(context.Background(), "doomed")
	require.NoError(t, err)

	d := waitTerminal(t, b, runID)
	assert.Equal(t, core.RunFailed, d.Status)
	assert.Equal(t, "provider down", d.Error)
	assert.NotEmpty(t, d.FinalMessage, "failed runs still carry a user-visible answer")
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	b := New(&echoEngine{})
	_, err := b.Submit(context.Background(), "   ")
	assert.Error(t, err)
}

func TestUnknownRunID(t *testing.T) {
	b := New(&echoEngine{})
	_, ok := b.Status("nope")
	assert.False(t, ok)
	assert.False(t, b.Cancel("nope"))
}

func TestOutcomesPersistToStore(t *testing.T) {
	st := store.NewInMemoryStore()
	b := New(&echoEngine{}, func(o *Options) { o.Store = st })

	runID, err := b.Submit(context.Background(), "persist me")
	require.NoError(t, err)
	waitTerminal(t, b, runID)
	b.Wait()

	d, err := st.GetDescriptor(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, core.RunSucceeded, d.Status)

	state, err := st.LoadRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, "echo: persist me", state.LastAgentMessage())
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	b := New(&echoEngine{}, func(o *Options) { o.Metrics = metrics })

	runID, err := b.Submit(context.Background(), "count me")
	require.NoError(t, err)
	waitTerminal(t, b, runID)
	b.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.runsActive))
}
