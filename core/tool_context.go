package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/learnmesh/logging"
)

// ToolActions records the side effects a tool produced during one invocation
// so the orchestrator can surface them alongside the tool result.
type ToolActions struct {
	StateDelta    map[string]any `json:"state_delta,omitempty"`
	ArtifactDelta map[string]int `json:"artifact_delta,omitempty"` // name -> saved version
}

// ToolContext provides a constrained, auditable surface for tool / function
// implementations invoked by the orchestrator. It binds one session and one
// function call, exposes the session's state through atomic updates and
// records state / artifact deltas for emission.
type ToolContext struct {
	ctx            context.Context
	sessionID      string
	functionCallID string
	sessions       SessionStore
	artifacts      ArtifactStore

	mu      sync.Mutex
	actions ToolActions

	*loggerAdapter
}

// ToolContextOptions carries the collaborators a ToolContext delegates to.
type ToolContextOptions struct {
	SessionStore  SessionStore
	ArtifactStore ArtifactStore
	Logger        logging.Logger
}

// NewToolContext constructs a tool context bound to sessionID and a unique
// functionCallID.
func NewToolContext(ctx context.Context, sessionID, functionCallID string, optFns ...func(o *ToolContextOptions)) *ToolContext {
	opts := ToolContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ToolContext{
		ctx:            ctx,
		sessionID:      sessionID,
		functionCallID: functionCallID,
		sessions:       opts.SessionStore,
		artifacts:      opts.ArtifactStore,
		loggerAdapter:  newLoggerAdapter(logging.With(opts.Logger, "session_id", sessionID, "fc_id", functionCallID)),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// SessionID returns the session ID associated with the tool invocation.
func (tc *ToolContext) SessionID() string { return tc.sessionID }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// UpdateState atomically replaces the value under k and records the new value
// in the state delta. It implements StateHandle.
func (tc *ToolContext) UpdateState(ctx context.Context, k string, fn UpdateFunc) error {
	if tc.sessions == nil {
		return fmt.Errorf("session service not configured")
	}
	var next any
	err := tc.sessions.Update(ctx, tc.sessionID, k, func(cur any, ok bool) (any, error) {
		v, err := fn(cur, ok)
		next = v
		return v, err
	})
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.actions.StateDelta == nil {
		tc.actions.StateDelta = map[string]any{}
	}
	tc.actions.StateDelta[k] = next
	return nil
}

// SaveArtifact persists artifact bytes and records the assigned version for emission.
func (tc *ToolContext) SaveArtifact(name, mimeType string, data []byte) (int, error) {
	if tc.artifacts == nil {
		return 0, fmt.Errorf("artifact service not configured")
	}
	version, err := tc.artifacts.Save(tc.ctx, tc.sessionID, name, mimeType, data)
	if err != nil {
		return 0, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.actions.ArtifactDelta == nil {
		tc.actions.ArtifactDelta = map[string]int{}
	}
	tc.actions.ArtifactDelta[name] = version
	return version, nil
}

// LoadArtifact retrieves a persisted artifact; version 0 selects the latest.
func (tc *ToolContext) LoadArtifact(name string, version int) (*Artifact, error) {
	if tc.artifacts == nil {
		return nil, fmt.Errorf("artifact service not configured")
	}
	return tc.artifacts.Load(tc.ctx, tc.sessionID, name, version)
}

// ListArtifacts returns artifact names stored for the session.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	if tc.artifacts == nil {
		return nil, fmt.Errorf("artifact service not configured")
	}
	return tc.artifacts.List(tc.ctx, tc.sessionID)
}

// Actions returns a snapshot of the accumulated actions.
func (tc *ToolContext) Actions() ToolActions {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := ToolActions{}
	if len(tc.actions.StateDelta) > 0 {
		out.StateDelta = make(map[string]any, len(tc.actions.StateDelta))
		for k, v := range tc.actions.StateDelta {
			out.StateDelta[k] = v
		}
	}
	if len(tc.actions.ArtifactDelta) > 0 {
		out.ArtifactDelta = make(map[string]int, len(tc.actions.ArtifactDelta))
		for k, v := range tc.actions.ArtifactDelta {
			out.ArtifactDelta[k] = v
		}
	}
	return out
}

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if !tc.IsValid() {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}

// IsValid reports whether Validate would succeed (fast path).
func (tc *ToolContext) IsValid() bool {
	return tc.ctx != nil && tc.sessionID != "" && tc.functionCallID != ""
}
