// Package redis provides a core.SessionStore backed by Redis hashes.
//
// Each session is one hash (`<prefix><session id>`); every state key is a
// field holding the JSON encoding of its value. Update uses WATCH/MULTI
// optimistic transactions, so concurrent updates to the same session from
// several processes never lose writes. Values read back from Redis surface as
// json.RawMessage; callers decode them into their own types.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/learnmesh/core"
	"github.com/redis/go-redis/v9"
)

const (
	stateFieldPrefix = "state:"
	createdField     = "_created"
	updatedField     = "_updated"
)

// ErrConflict is returned when an Update keeps losing the optimistic race
// after MaxRetries attempts.
var ErrConflict = errors.New("session update conflict")

// Options configure the Redis session store.
type Options struct {
	// KeyPrefix namespaces session hashes.
	KeyPrefix string
	// TTL expires idle sessions; zero keeps them forever.
	TTL time.Duration
	// MaxRetries bounds optimistic transaction retries per Update.
	MaxRetries int
}

// Store implements core.SessionStore on top of a Redis client.
type Store struct {
	rdb  redis.UniversalClient
	opts Options
}

// NewStore wraps an existing client.
func NewStore(rdb redis.UniversalClient, optFns ...func(o *Options)) *Store {
	opts := Options{
		KeyPrefix:  "learnmesh:session:",
		MaxRetries: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{rdb: rdb, opts: opts}
}

// NewStoreFromURL parses a redis:// URL, connects and verifies the connection.
func NewStoreFromURL(ctx context.Context, url string, optFns ...func(o *Options)) (*Store, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(ropts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewStore(rdb, optFns...), nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) key(sessionID string) string { return s.opts.KeyPrefix + sessionID }

// Create resets the session hash.
func (s *Store) Create(ctx context.Context, sessionID string) (*core.Session, error) {
	key := s.key(sessionID)
	now := time.Now()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, createdField, now.UnixNano(), updatedField, now.UnixNano())
		s.expire(ctx, pipe, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", sessionID, err)
	}
	sess := core.NewSession(sessionID)
	sess.Created, sess.Updated = now, now
	return sess, nil
}

// Get loads the session; a missing hash yields a fresh empty session.
func (s *Store) Get(ctx context.Context, sessionID string) (*core.Session, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	sess := core.NewSession(sessionID)
	for f, v := range fields {
		switch {
		case f == createdField:
			sess.Created = parseNanos(v, sess.Created)
		case f == updatedField:
			sess.Updated = parseNanos(v, sess.Updated)
		case strings.HasPrefix(f, stateFieldPrefix):
			sess.State[strings.TrimPrefix(f, stateFieldPrefix)] = json.RawMessage(v)
		}
	}
	return sess, nil
}

// ApplyDelta writes every delta entry in one transaction.
func (s *Store) ApplyDelta(ctx context.Context, sessionID string, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	values := make([]any, 0, len(delta)*2+2)
	for k, v := range delta {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode state %q: %w", k, err)
		}
		values = append(values, stateFieldPrefix+k, b)
	}
	values = append(values, updatedField, time.Now().UnixNano())

	key := s.key(sessionID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		s.expire(ctx, pipe, key)
		return nil
	})
	return err
}

// Update performs an optimistic read-modify-write of one state field.
func (s *Store) Update(ctx context.Context, sessionID, stateKey string, fn core.UpdateFunc) error {
	key := s.key(sessionID)
	field := stateFieldPrefix + stateKey

	txf := func(tx *redis.Tx) error {
		var (
			cur any
			ok  bool
		)
		raw, err := tx.HGet(ctx, key, field).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			cur, ok = json.RawMessage(raw), true
		}

		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode state %q: %w", stateKey, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, b, updatedField, time.Now().UnixNano())
			s.expire(ctx, pipe, key)
			return nil
		})
		return err
	}

	for i := 0; i < s.opts.MaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: session %s key %s", ErrConflict, sessionID, stateKey)
}

func (s *Store) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.opts.TTL > 0 {
		pipe.Expire(ctx, key, s.opts.TTL)
	}
}

func parseNanos(v string, fallback time.Time) time.Time {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(0, n)
}
