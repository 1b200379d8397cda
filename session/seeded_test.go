package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnmesh/internal/testutil"
)

func TestInMemoryStore_SeededStateIsIsolated(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewSessionBuilder("seeded").State("scores", []any{60.0, 80.0}).State("level", "beginner")
	store := b.Store()

	sess, err := store.Get(ctx, "seeded")
	require.NoError(t, err)
	assert.Equal(t, b.Build().State, sess.State)

	other, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	_, ok := other.GetState("scores")
	assert.False(t, ok)
}

func TestInMemoryStore_UpdateOnSeededSession(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSessionBuilder("seeded").State("n", 1).Store()

	require.NoError(t, store.Update(ctx, "seeded", "n", func(cur any, ok bool) (any, error) {
		require.True(t, ok)
		return cur.(int) + 1, nil
	}))

	sess, err := store.Get(ctx, "seeded")
	require.NoError(t, err)
	v, _ := sess.GetState("n")
	assert.Equal(t, 2, v)
}
