package core

import (
	"context"
	"time"
)

// Artifact is a named, versioned binary payload.
type Artifact struct {
	Name     string    `json:"name"`
	MimeType string    `json:"mime_type"`
	Data     []byte    `json:"-"`
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
}

// ArtifactStore defines the interface for artifact persistence. Implementations
// must be thread-safe and scope artifacts by session identifier.
//
// Contract:
//   - Save returns version 1 for the first payload under a name and a strictly
//     greater version for every later save; versions are never reused, even
//     after Delete
//   - Save is atomic: either a version is assigned and returned or nothing is
//     persisted
//   - Load with version 0 returns the latest version.
type ArtifactStore interface {
	Save(ctx context.Context, sessionID, name, mimeType string, data []byte) (int, error)
	Load(ctx context.Context, sessionID, name string, version int) (*Artifact, error)
	Versions(ctx context.Context, sessionID, name string) ([]int, error)
	List(ctx context.Context, sessionID string) ([]string, error)
	Delete(ctx context.Context, sessionID, name string) error
}
