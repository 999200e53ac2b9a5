// Package localmind provides a high-level façade over the assistant graph,
// the async task boundary and the supporting services (inference backend,
// tool adapters, persistence, logging). Most applications interact with this
// package by:
//  1. Loading a Config (config.Load) or accepting the defaults
//  2. Creating a Localmind via New(), optionally overriding collaborators
//  3. Submitting requests (Submit) and polling their descriptors (Status)
//
// The façade delegates orchestration to assistant.Assistant behind
// boundary.Boundary while keeping setup ergonomics concise. Defaults are safe
// for local development: SQLite persistence in the working directory (or
// in-memory via storage.in_memory), JSON logging at the configured level and
// a local OpenAI-compatible model server on 127.0.0.1:8080.
package localmind

import (
	"context"
	"time"

	"github.com/localmind-ai/localmind/assistant"
	"github.com/localmind-ai/localmind/boundary"
	"github.com/localmind-ai/localmind/config"
	"github.com/localmind-ai/localmind/core"
	"github.com/localmind-ai/localmind/inference"
	"github.com/localmind-ai/localmind/inference/openai"
	"github.com/localmind-ai/localmind/logging"
	"github.com/localmind-ai/localmind/store"
	"github.com/localmind-ai/localmind/store/sqlite"
	"github.com/localmind-ai/localmind/tool"
)

// Options configures the Localmind instance.
type Options struct {
	// Config supplies the policy values. Nil falls back to config defaults.
	Config *config.Config

	// Client overrides the inference backend built from Config.
	Client inference.Client

	// SearchTool and EmailTool override the adapters built from Config's
	// tool endpoints. A nil adapter with no configured endpoint disables
	// the capability.
	SearchTool tool.Tool
	EmailTool  tool.Tool

	// Store overrides the persistence layer built from Config's storage
	// section (SQLite at storage.path, or in-memory when
	// storage.in_memory is set).
	Store store.RunStore

	// Metrics enables run-outcome counters when set.
	Metrics *boundary.Metrics

	// Logger overrides the structured logger built from Config's log_level
	// and log_format settings.
	Logger logging.Logger
}

// Localmind is the high-level façade aggregating the assistant and boundary.
type Localmind struct {
	opts      Options
	assistant *assistant.Assistant
	boundary  *boundary.Boundary
	store     store.RunStore
	ownsStore bool
}

// New creates a Localmind instance with optional overrides. Any unset
// collaborator is initialized from the configuration.
func New(optFns ...func(o *Options)) (*Localmind, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	}
	cfg := opts.Config

	if opts.Logger == nil {
		opts.Logger = logging.NewRunLogger(&logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
		}).WithComponent("localmind")
	}

	if opts.Client == nil {
		opts.Client = openai.New(func(o *openai.Options) {
			o.BaseURL = cfg.Inference.BaseURL
			o.APIKey = cfg.Inference.APIKey
			o.Model = cfg.Inference.Model
			o.Temperature = cfg.Inference.Temperature
			o.MaxTokens = int64(cfg.Inference.MaxTokens)
			o.Stop = cfg.Inference.Stop
			o.Timeout = cfg.Inference.Timeout
		})
	}
	if opts.SearchTool == nil && cfg.Tools.SearchEndpoint != "" {
		opts.SearchTool = tool.NewSearchTool(cfg.Tools.SearchEndpoint)
	}
	if opts.EmailTool == nil && cfg.Tools.EmailEndpoint != "" {
		opts.EmailTool = tool.NewEmailTool(cfg.Tools.EmailEndpoint)
	}

	ownsStore := false
	if opts.Store == nil {
		if cfg.Storage.InMemory {
			opts.Store = store.NewInMemoryStore()
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			st, err := sqlite.Open(ctx, cfg.Storage)
			if err != nil {
				return nil, err
			}
			opts.Store = st
			ownsStore = true
		}
	}

	retry := core.RetryPolicy{
		MaxAttempts: cfg.Engine.RetryAttempts,
		Backoff:     cfg.Engine.RetryBackoff,
	}
	a := assistant.New(opts.Client, opts.SearchTool, opts.EmailTool, func(o *assistant.Options) {
		o.Retry = retry
		o.MaxSteps = cfg.Engine.MaxSteps
		o.Logger = opts.Logger
	})
	b := boundary.New(a, func(o *boundary.Options) {
		o.Timeout = cfg.Boundary.RunTimeout
		o.WorkerSlots = cfg.Boundary.WorkerSlots
		o.Store = opts.Store
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
	})

	return &Localmind{opts: opts, assistant: a, boundary: b, store: opts.Store, ownsStore: ownsStore}, nil
}

// Close waits for in-flight runs and releases a store the façade opened
// itself. Injected stores remain the caller's responsibility.
func (l *Localmind) Close() error {
	l.boundary.Wait()
	if !l.ownsStore {
		return nil
	}
	if closer, ok := l.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Submit schedules a new request and returns its run id immediately.
func (l *Localmind) Submit(ctx context.Context, input string) (string, error) {
	return l.boundary.Submit(ctx, input)
}

// Resume schedules a follow-up turn on a previously persisted run, loading
// its state from the store. Used for confirmation flows ("yes" after a
// presented email draft).
func (l *Localmind) Resume(ctx context.Context, previousRunID, input string) (string, error) {
	state, err := l.store.LoadRun(ctx, previousRunID)
	if err != nil {
		return "", err
	}
	return l.boundary.Resume(ctx, assistant.Continue(state, input))
}

// Status returns the descriptor snapshot for a run.
func (l *Localmind) Status(runID string) (core.RunDescriptor, bool) {
	return l.boundary.Status(runID)
}

// Cancel requests cooperative cancellation of a run.
func (l *Localmind) Cancel(runID string) bool {
	return l.boundary.Cancel(runID)
}

// SubmitSync is a synchronous helper that submits and polls until the run
// reaches a terminal state or ctx ends.
func (l *Localmind) SubmitSync(ctx context.Context, input string) (core.RunDescriptor, error) {
	runID, err := l.Submit(ctx, input)
	if err != nil {
		return core.RunDescriptor{}, err
	}
	return l.wait(ctx, runID)
}

func (l *Localmind) wait(ctx context.Context, runID string) (core.RunDescriptor, error) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		d, ok := l.Status(runID)
		if ok && d.Status.Terminal() {
			return d, nil
		}
		select {
		case <-ctx.Done():
			l.Cancel(runID)
			return d, ctx.Err()
		case <-ticker.C:
		}
	}
}
