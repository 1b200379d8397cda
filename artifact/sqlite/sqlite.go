// Package sqlite provides a durable core.ArtifactStore backed by SQLite.
//
// Version numbers come from a per (session, name) counter row that is bumped
// inside the same transaction as the payload insert, so a failed save leaves
// neither a payload nor a consumed version behind, and deleting an artifact
// never rewinds the counter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/learnmesh/artifact"
	"github.com/hupe1980/learnmesh/core"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifact_counters (
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	last       INTEGER NOT NULL,
	PRIMARY KEY (session_id, name)
);
CREATE TABLE IF NOT EXISTS artifacts (
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	mime_type  TEXT NOT NULL,
	data       BLOB NOT NULL,
	created    INTEGER NOT NULL,
	PRIMARY KEY (session_id, name, version)
);`

// Store implements core.ArtifactStore on a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ core.ArtifactStore = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema exists.
// The parent directory is created if missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create artifact schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores data as the next version of name.
func (s *Store) Save(ctx context.Context, sessionID, name, mimeType string, data []byte) (int, error) {
	if name == "" {
		return 0, artifact.ErrInvalidName
	}
	if data == nil {
		data = []byte{}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	err = tx.QueryRowContext(ctx, `
INSERT INTO artifact_counters (session_id, name, last) VALUES (?, ?, 1)
ON CONFLICT (session_id, name) DO UPDATE SET last = last + 1
RETURNING last`, sessionID, name).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("next artifact version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO artifacts (session_id, name, version, mime_type, data, created) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, name, version, mimeType, data, s.now().UnixNano(),
	); err != nil {
		return 0, fmt.Errorf("insert artifact: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save tx: %w", err)
	}
	return version, nil
}

// Load returns the requested version, or the latest when version is 0.
func (s *Store) Load(ctx context.Context, sessionID, name string, version int) (*core.Artifact, error) {
	query := "SELECT version, mime_type, data, created FROM artifacts WHERE session_id = ? AND name = ? AND version = ?"
	args := []any{sessionID, name, version}
	if version == 0 {
		query = "SELECT version, mime_type, data, created FROM artifacts WHERE session_id = ? AND name = ? ORDER BY version DESC LIMIT 1"
		args = args[:2]
	}
	var (
		a       = core.Artifact{Name: name}
		created int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.Version, &a.MimeType, &a.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	a.Created = time.Unix(0, created)
	return &a, nil
}

// Versions lists the retained versions of name in ascending order.
func (s *Store) Versions(ctx context.Context, sessionID, name string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT version FROM artifacts WHERE session_id = ? AND name = ? ORDER BY version", sessionID, name)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, artifact.ErrNotFound
	}
	return out, nil
}

// List returns the sorted artifact names stored for the session.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT name FROM artifacts WHERE session_id = ? ORDER BY name", sessionID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes every version of name. The counter row is kept.
func (s *Store) Delete(ctx context.Context, sessionID, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE session_id = ? AND name = ?", sessionID, name)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return artifact.ErrNotFound
	}
	return nil
}
