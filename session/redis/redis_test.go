package redis

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hupe1980/learnmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var _ core.SessionStore = (*Store)(nil)

// newTestStore connects to LEARNMESH_REDIS_URL or skips.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("LEARNMESH_REDIS_URL")
	if url == "" {
		t.Skip("LEARNMESH_REDIS_URL not set")
	}
	prefix := "learnmesh-test:" + uuid.NewString() + ":"
	s, err := NewStoreFromURL(context.Background(), url, func(o *Options) {
		o.KeyPrefix = prefix
		o.MaxRetries = 100
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UpdateRoundTripsJSON(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "s1", "scores", func(cur any, ok bool) (any, error) {
		assert.False(t, ok)
		return []float64{80, 90}, nil
	}))

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	raw, ok := sess.GetState("scores")
	require.True(t, ok)

	var got []float64
	require.NoError(t, json.Unmarshal(raw.(json.RawMessage), &got))
	assert.Equal(t, []float64{80, 90}, got)
}

func TestStore_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			return s.Update(ctx, "s1", "n", func(cur any, ok bool) (any, error) {
				n := 0
				if ok {
					if err := json.Unmarshal(cur.(json.RawMessage), &n); err != nil {
						return nil, err
					}
				}
				return n + 1, nil
			})
		})
	}
	require.NoError(t, g.Wait())

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	raw, _ := sess.GetState("n")
	assert.JSONEq(t, "20", string(raw.(json.RawMessage)))
}

func TestStore_CreateResetsState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyDelta(ctx, "s1", map[string]any{"k": "v"}))
	_, err := s.Create(ctx, "s1")
	require.NoError(t, err)

	sess, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	_, ok := sess.GetState("k")
	assert.False(t, ok)
}
