package testutil

import (
	"context"

	"github.com/hupe1980/learnmesh/artifact"
	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/session"
)

// ToolContextBuilder constructs *core.ToolContext values backed by in-memory
// stores unless overridden.
//
//	tc := NewToolContextBuilder().Session("s1").Build(ctx)
type ToolContextBuilder struct {
	sessionID      string
	functionCallID string
	sessions       core.SessionStore
	artifacts      core.ArtifactStore
	logger         logging.Logger
}

// NewToolContextBuilder returns a builder with session "sess-1" and call "fc-1".
func NewToolContextBuilder() *ToolContextBuilder {
	return &ToolContextBuilder{
		sessionID:      "sess-1",
		functionCallID: "fc-1",
		sessions:       session.NewInMemoryStore(),
		artifacts:      artifact.NewInMemoryStore(),
		logger:         logging.NoOpLogger{},
	}
}

// Session sets the session id (chainable).
func (b *ToolContextBuilder) Session(id string) *ToolContextBuilder { b.sessionID = id; return b }

// FunctionCall sets the function call id (chainable).
func (b *ToolContextBuilder) FunctionCall(id string) *ToolContextBuilder {
	b.functionCallID = id
	return b
}

// SessionStore overrides the session store (chainable).
func (b *ToolContextBuilder) SessionStore(s core.SessionStore) *ToolContextBuilder {
	b.sessions = s
	return b
}

// ArtifactStore overrides the artifact store (chainable).
func (b *ToolContextBuilder) ArtifactStore(a core.ArtifactStore) *ToolContextBuilder {
	b.artifacts = a
	return b
}

// Logger overrides the logger (chainable).
func (b *ToolContextBuilder) Logger(l logging.Logger) *ToolContextBuilder { b.logger = l; return b }

// Build returns the tool context bound to ctx.
func (b *ToolContextBuilder) Build(ctx context.Context) *core.ToolContext {
	return core.NewToolContext(ctx, b.sessionID, b.functionCallID, func(o *core.ToolContextOptions) {
		o.SessionStore = b.sessions
		o.ArtifactStore = b.artifacts
		o.Logger = b.logger
	})
}
