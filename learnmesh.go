// Package learnmesh wires the learning assistant's tool surface: a rolling
// quiz performance tracker, a resilient illustration fetcher with a single
// classified fallback hop, and a versioned artifact store. Most applications
// interact with this package by:
//  1. Creating a Mesh via New() or NewFromConfig()
//  2. Invoking tools by name for a session (Invoke)
//  3. Closing the Mesh to release durable stores
//
// All defaults are in-memory and safe for local development and testing.
package learnmesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/learnmesh/artifact"
	"github.com/hupe1980/learnmesh/artifact/sqlite"
	"github.com/hupe1980/learnmesh/config"
	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/imagegen"
	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/performance"
	"github.com/hupe1980/learnmesh/retry"
	"github.com/hupe1980/learnmesh/session"
	"github.com/hupe1980/learnmesh/session/redis"
	"github.com/hupe1980/learnmesh/tool"
)

// ErrNoPrimaryBackend is returned by New when no primary image backend is set.
var ErrNoPrimaryBackend = errors.New("primary image backend is required")

// Options configures the Mesh instance.
type Options struct {
	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore

	// Primary is required. Secondary is the fallback hop; nil disables it.
	Primary   imagegen.Backend
	Secondary imagegen.Backend

	// RetryPolicy wraps both backends. A policy with Attempts <= 1 disables retries.
	RetryPolicy    retry.Policy
	AttemptTimeout time.Duration
	MaxConcurrent  int64

	// WindowCapacity overrides the score window size.
	WindowCapacity int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Invocation is the outcome of one tool call.
type Invocation struct {
	ID      string           `json:"id"`
	Tool    string           `json:"tool"`
	Result  map[string]any   `json:"result"`
	Actions core.ToolActions `json:"actions"`
}

// Mesh aggregates the stores, the aggregation and acquisition components and
// the tool registry.
type Mesh struct {
	opts     Options
	tracker  *performance.Tracker
	fetcher  *imagegen.Fetcher
	registry *tool.Registry
	closers  []io.Closer
}

// New creates a new Mesh. Any unset store is initialized with an in-memory
// implementation.
func New(optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{
		SessionStore:   session.NewInMemoryStore(),
		ArtifactStore:  artifact.NewInMemoryStore(),
		RetryPolicy:    retry.DefaultPolicy(),
		AttemptTimeout: 60 * time.Second,
		MaxConcurrent:  4,
		WindowCapacity: performance.WindowCapacity,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Primary == nil {
		return nil, ErrNoPrimaryBackend
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	tracker := performance.NewTracker(func(o *performance.Options) {
		o.Capacity = opts.WindowCapacity
		o.Logger = logging.With(opts.Logger, "component", "performance")
	})

	fetchLogger := logging.With(opts.Logger, "component", "imagegen")
	primary := imagegen.Backend(imagegen.WithRetry(opts.Primary, opts.RetryPolicy, fetchLogger))
	var secondary imagegen.Backend
	if opts.Secondary != nil {
		secondary = imagegen.WithRetry(opts.Secondary, opts.RetryPolicy, fetchLogger)
	}
	fetcher := imagegen.NewFetcher(primary, secondary, func(o *imagegen.FetcherOptions) {
		o.AttemptTimeout = opts.AttemptTimeout
		o.MaxConcurrent = opts.MaxConcurrent
		o.Logger = fetchLogger
	})

	registry := tool.NewRegistry(
		tool.NewPerformanceTool(tracker),
		tool.NewGenerateImageTool(fetcher),
		tool.NewLoadArtifactTool(),
		tool.NewListArtifactsTool(),
	)

	return &Mesh{opts: opts, tracker: tracker, fetcher: fetcher, registry: registry}, nil
}

// NewFromConfig builds a Mesh from cfg. Required credentials must be present;
// stores and backends are created as configured. optFns are applied last and
// may override anything built from cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	var sessions core.SessionStore = session.NewInMemoryStore()
	if cfg.Session.Store == "redis" {
		rs, err := redis.NewStoreFromURL(ctx, cfg.Session.RedisURL, func(o *redis.Options) {
			if cfg.Session.KeyPrefix != "" {
				o.KeyPrefix = cfg.Session.KeyPrefix
			}
			o.TTL = cfg.Session.TTL
		})
		if err != nil {
			return nil, err
		}
		closers = append(closers, rs)
		sessions = rs
	}

	var artifacts core.ArtifactStore = artifact.NewInMemoryStore()
	if cfg.Artifacts.Store == "sqlite" {
		as, err := sqlite.Open(ctx, cfg.Artifacts.Path)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, as)
		artifacts = as
	}

	var primary imagegen.Backend
	switch cfg.Primary.Provider {
	case "openai":
		primary = imagegen.NewOpenAIBackend(cfg.Credentials.OpenAIAPIKey, func(o *imagegen.OpenAIOptions) {
			if cfg.Primary.Model != "" {
				o.Model = cfg.Primary.Model
			}
		})
	default:
		gb, err := imagegen.NewGenAIBackend(ctx, cfg.Credentials.GoogleAPIKey, func(o *imagegen.GenAIOptions) {
			if cfg.Primary.Model != "" {
				o.Model = cfg.Primary.Model
			}
		})
		if err != nil {
			cleanup()
			return nil, err
		}
		primary = gb
	}

	var secondary imagegen.Backend
	if cfg.Secondary.Enabled {
		secondary = imagegen.NewPollinationsBackend(func(o *imagegen.PollinationsOptions) {
			if cfg.Secondary.BaseURL != "" {
				o.BaseURL = cfg.Secondary.BaseURL
			}
			if cfg.Secondary.Model != "" {
				o.Model = cfg.Secondary.Model
			}
		})
	}

	m, err := New(append([]func(o *Options){func(o *Options) {
		o.SessionStore = sessions
		o.ArtifactStore = artifacts
		o.Primary = primary
		o.Secondary = secondary
		o.RetryPolicy = cfg.RetryPolicy()
		o.AttemptTimeout = cfg.Fetcher.AttemptTimeout
		o.MaxConcurrent = cfg.Fetcher.MaxConcurrent
		o.Logger = logger
	}}, optFns...)...)
	if err != nil {
		cleanup()
		return nil, err
	}
	m.closers = closers
	return m, nil
}

// Tools returns the registered tools sorted by name.
func (m *Mesh) Tools() []tool.Tool { return m.registry.List() }

// SessionStore returns the configured session store.
func (m *Mesh) SessionStore() core.SessionStore { return m.opts.SessionStore }

// ArtifactStore returns the configured artifact store.
func (m *Mesh) ArtifactStore() core.ArtifactStore { return m.opts.ArtifactStore }

// Invoke runs the named tool for sessionID. Unknown tools yield an error
// result; Invoke never returns a Go error.
func (m *Mesh) Invoke(ctx context.Context, sessionID, toolName string, args map[string]any) *Invocation {
	tc := m.toolContext(ctx, sessionID)
	inv := &Invocation{ID: tc.FunctionCallID(), Tool: toolName}

	t, ok := m.registry.Get(toolName)
	if !ok {
		inv.Result = tool.ErrorResult(&tool.ToolError{
			Tool:    toolName,
			Message: fmt.Sprintf("unknown tool %q", toolName),
			Code:    tool.CodeNotFound,
		})
		return inv
	}
	if sessionID == "" {
		inv.Result = tool.ErrorResult(&tool.ToolError{Tool: toolName, Message: "session_id is required", Code: tool.CodeValidation})
		return inv
	}

	inv.Result = tool.Execute(tc, t, args)
	inv.Actions = tc.Actions()
	return inv
}

// RecordScore records a percentage score for sessionID and returns the
// updated aggregate.
func (m *Mesh) RecordScore(ctx context.Context, sessionID string, score float64) (performance.AggregateResult, error) {
	return m.tracker.RecordAndAggregate(ctx, core.BindSession(m.opts.SessionStore, sessionID), score)
}

// Illustrate acquires an image for prompt and saves it in sessionID's
// artifact namespace.
func (m *Mesh) Illustrate(ctx context.Context, sessionID, prompt, name string) (imagegen.Result, error) {
	return m.fetcher.Acquire(ctx, m.toolContext(ctx, sessionID), prompt, name)
}

// Close releases durable stores opened by NewFromConfig.
func (m *Mesh) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (m *Mesh) toolContext(ctx context.Context, sessionID string) *core.ToolContext {
	return core.NewToolContext(ctx, sessionID, core.NewID(), func(o *core.ToolContextOptions) {
		o.SessionStore = m.opts.SessionStore
		o.ArtifactStore = m.opts.ArtifactStore
		o.Logger = m.opts.Logger
	})
}
