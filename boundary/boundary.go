// Package boundary implements the asynchronous task boundary around the slow
// assistant engine. Submit accepts a request and returns immediately with a
// run id; execution happens on a bounded pool of worker slots with a
// wall-clock timeout independent of the engine's step ceiling. Status exposes
// the run descriptor; Cancel cooperatively aborts pending or in-flight runs.
package boundary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/logging"
	"github.com/localmind-ai/localmind/store"
)

// Default policy values, overridable through Options.
const (
	DefaultTimeout     = 5 * time.Minute
	DefaultWorkerSlots = 4
)

// Engine is what the boundary executes: one full pass over a run state.
// assistant.Assistant satisfies it.
type Engine interface {
	Run(ctx context.Context, state core.RunState) (core.RunState, error)
}

// Options configure a Boundary.
type Options struct {
	// Timeout is the wall-clock ceiling per run. Expiry aborts in-flight
	// tool and inference calls and marks the run timed_out.
	Timeout time.Duration
	// WorkerSlots bounds how many runs execute concurrently. Submissions
	// beyond the bound stay pending until a slot frees.
	WorkerSlots int
	// Store, when set, persists final run state and every descriptor
	// transition. A nil store keeps everything in memory only.
	Store store.RunStore
	// Metrics, when set, counts run outcomes.
	Metrics *Metrics
	// Logger receives run lifecycle records.
	Logger logging.Logger
}

// Boundary is the submission surface. Descriptors are the only state shared
// with callers, always returned by value.
type Boundary struct {
	engine Engine
	opts   Options
	slots  chan struct{}

	mu          sync.Mutex
	descriptors map[string]*core.RunDescriptor
	cancels     map[string]context.CancelFunc
	cancelAsked map[string]bool
	wg          sync.WaitGroup
}

// New builds a Boundary around an engine.
func New(engine Engine, optFns ...func(o *Options)) *Boundary {
	opts := Options{
		Timeout:     DefaultTimeout,
		WorkerSlots: DefaultWorkerSlots,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WorkerSlots <= 0 {
		opts.WorkerSlots = DefaultWorkerSlots
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Boundary{
		engine:      engine,
		opts:        opts,
		slots:       make(chan struct{}, opts.WorkerSlots),
		descriptors: make(map[string]*core.RunDescriptor),
		cancels:     make(map[string]context.CancelFunc),
		cancelAsked: make(map[string]bool),
	}
}

// Submit accepts a request and schedules it for execution. It never blocks on
// a worker slot: the returned run id is immediately pollable via Status.
// Resubmitting the same input always creates a fresh run id; a run id is
// executed at most once.
func (b *Boundary) Submit(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(input) == "" {
		return "", errors.New("boundary: empty input")
	}
	return b.schedule(core.NewRunState(input))
}

// Resume schedules a follow-up turn on an existing conversation state, for
// confirmation flows. The caller prepares the state (assistant.Continue).
func (b *Boundary) Resume(ctx context.Context, state core.RunState) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.schedule(state)
}

func (b *Boundary) schedule(state core.RunState) (string, error) {
	runID := uuid.NewString()
	desc := core.NewRunDescriptor(runID)

	// The wall-clock ceiling starts at submission, so time spent waiting
	// for a worker slot counts against it.
	runCtx, cancel := context.WithTimeout(context.Background(), b.opts.Timeout)

	b.mu.Lock()
	b.descriptors[runID] = &desc
	b.cancels[runID] = cancel
	b.mu.Unlock()

	b.persistDescriptor(desc)
	b.opts.Logger.Info("run submitted", "run_id", runID)

	b.wg.Add(1)
	go b.execute(runCtx, runID, state)
	return runID, nil
}

// Status returns a snapshot of the run descriptor.
func (b *Boundary) Status(runID string) (core.RunDescriptor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.descriptors[runID]
	if !ok {
		return core.RunDescriptor{}, false
	}
	return *d, true
}

// Cancel requests cancellation. Pending runs transition to cancelled
// directly; running ones are aborted cooperatively through their context. It
// returns false for unknown or already-terminal runs.
func (b *Boundary) Cancel(runID string) bool {
	b.mu.Lock()
	d, ok := b.descriptors[runID]
	if !ok || d.Status.Terminal() {
		b.mu.Unlock()
		return false
	}
	if d.Status == core.RunPending {
		// The worker goroutine observes the terminal status and skips
		// execution entirely.
		_ = d.Transition(core.RunCancelled)
		snapshot := *d
		cancel := b.cancels[runID]
		delete(b.cancels, runID)
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		b.opts.Metrics.recordOutcome(string(core.RunCancelled))
		b.persistDescriptor(snapshot)
		b.opts.Logger.Info("run cancelled before start", "run_id", runID)
		return true
	}
	// Remember the request so a result the engine produces before
	// observing the context is discarded rather than reported.
	b.cancelAsked[runID] = true
	cancel := b.cancels[runID]
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.opts.Logger.Info("run cancellation requested", "run_id", runID)
	return true
}

// Wait blocks until all scheduled runs have reached a terminal state. Used by
// tests and graceful shutdown.
func (b *Boundary) Wait() { b.wg.Wait() }

func (b *Boundary) execute(runCtx context.Context, runID string, state core.RunState) {
	defer b.wg.Done()

	select {
	case b.slots <- struct{}{}:
		defer func() { <-b.slots }()
	case <-runCtx.Done():
		// Cancel finalizes the descriptor itself; a deadline expiring
		// while the run is still queued is finalized here.
		b.mu.Lock()
		d := b.descriptors[runID]
		if d.Status.Terminal() {
			b.mu.Unlock()
			return
		}
		_ = d.Transition(core.RunTimedOut)
		d.Error = "run exceeded the wall-clock timeout"
		snapshot := *d
		cancel := b.cancels[runID]
		delete(b.cancels, runID)
		delete(b.cancelAsked, runID)
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		b.opts.Metrics.recordOutcome(string(core.RunTimedOut))
		b.persistDescriptor(snapshot)
		b.opts.Logger.Info("run timed out in queue", "run_id", runID)
		return
	}

	b.mu.Lock()
	d := b.descriptors[runID]
	if d.Status.Terminal() {
		b.mu.Unlock()
		return
	}
	_ = d.Transition(core.RunRunning)
	snapshot := *d
	b.mu.Unlock()

	b.opts.Metrics.runStarted()
	b.persistDescriptor(snapshot)
	b.opts.Logger.Info("run started", "run_id", runID)

	final, err := b.engine.Run(runCtx, state)
	b.finish(runID, final, err)
}

// finish maps the engine outcome onto exactly one terminal transition.
func (b *Boundary) finish(runID string, state core.RunState, err error) {
	status := core.RunSucceeded
	errText := ""
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = core.RunTimedOut
		errText = "run exceeded the wall-clock timeout"
	case errors.Is(err, context.Canceled):
		status = core.RunCancelled
		errText = "run cancelled"
	case err != nil:
		status = core.RunFailed
		errText = err.Error()
	case state.Err != nil:
		status = core.RunFailed
		errText = state.Err.Message
	}

	b.mu.Lock()
	d := b.descriptors[runID]
	if d.Status.Terminal() {
		b.mu.Unlock()
		return
	}
	// A cancellation the engine never observed still wins: the caller was
	// told the run would be cancelled, so the late result is discarded.
	if b.cancelAsked[runID] {
		status = core.RunCancelled
		errText = "run cancelled"
	}
	_ = d.Transition(status)
	if status != core.RunTimedOut && status != core.RunCancelled {
		d.FinalMessage = state.LastAgentMessage()
	}
	d.Error = errText
	snapshot := *d
	cancel := b.cancels[runID]
	delete(b.cancels, runID)
	delete(b.cancelAsked, runID)
	b.mu.Unlock()
	if cancel != nil {
		// Releases the timeout timer; the run context is spent.
		cancel()
	}

	b.opts.Metrics.runFinished(string(status))
	b.persistState(runID, state)
	b.persistDescriptor(snapshot)
	b.opts.Logger.Info("run finished", "run_id", runID, "status", string(status))
}

func (b *Boundary) persistDescriptor(d core.RunDescriptor) {
	if b.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.opts.Store.PutDescriptor(ctx, d); err != nil {
		b.opts.Logger.Error("descriptor persist failed", "run_id", d.ID, "error", err.Error())
	}
}

func (b *Boundary) persistState(runID string, state core.RunState) {
	if b.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.opts.Store.SaveRun(ctx, runID, state); err != nil {
		b.opts.Logger.Error("run state persist failed", "run_id", runID, "error", err.Error())
	}
}
