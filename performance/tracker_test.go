package performance

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/internal/testutil"
	"github.com/hupe1980/learnmesh/session"
)

func record(t *testing.T, tr *Tracker, h core.StateHandle, scores ...float64) AggregateResult {
	t.Helper()
	var res AggregateResult
	for _, s := range scores {
		var err error
		res, err = tr.RecordAndAggregate(context.Background(), h, s)
		require.NoError(t, err)
	}
	return res
}

func TestTracker_ThreeScoresAverage(t *testing.T) {
	h := core.BindSession(session.NewInMemoryStore(), "s1")
	res := record(t, NewTracker(), h, 80, 90, 70)
	assert.Equal(t, AggregateResult{Status: "success", OverallPercentage: 80, Count: 3}, res)
}

func TestTracker_EvictionBoundary(t *testing.T) {
	h := core.BindSession(session.NewInMemoryStore(), "s1")
	tr := NewTracker()

	res := record(t, tr, h, 0)
	assert.Equal(t, 0, res.OverallPercentage)
	assert.Equal(t, 1, res.Count)

	scores := make([]float64, 24)
	for i := range scores {
		scores[i] = 100
	}
	res = record(t, tr, h, scores...)
	assert.Equal(t, 25, res.Count)
	assert.Equal(t, 96, res.OverallPercentage) // round(2400/25)

	// 26th submission evicts the initial 0
	res = record(t, tr, h, 100)
	assert.Equal(t, 25, res.Count)
	assert.Equal(t, 100, res.OverallPercentage)
}

func TestTracker_RoundsHalfAwayFromZero(t *testing.T) {
	h := core.BindSession(session.NewInMemoryStore(), "s1")
	res := record(t, NewTracker(), h, 80, 81)
	assert.Equal(t, 81, res.OverallPercentage) // 80.5

	h = core.BindSession(session.NewInMemoryStore(), "s2")
	res = record(t, NewTracker(), h, 33.3)
	assert.Equal(t, 33, res.OverallPercentage)
}

func TestTracker_RejectsInvalidScores(t *testing.T) {
	store := session.NewInMemoryStore()
	h := core.BindSession(store, "s1")
	tr := NewTracker()
	record(t, tr, h, 50)

	for _, bad := range []float64{-1, 100.5, math.NaN(), math.Inf(1)} {
		_, err := tr.RecordAndAggregate(context.Background(), h, bad)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "score %v", bad)
	}

	// window untouched
	sess, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	v, ok := sess.GetState(StateKey)
	require.True(t, ok)
	assert.Equal(t, []float64{50}, v)
}

func TestTracker_SessionsAreIsolated(t *testing.T) {
	store := session.NewInMemoryStore()
	tr := NewTracker()
	a := record(t, tr, core.BindSession(store, "a"), 100, 100)
	b := record(t, tr, core.BindSession(store, "b"), 10)
	assert.Equal(t, 100, a.OverallPercentage)
	assert.Equal(t, 10, b.OverallPercentage)
	assert.Equal(t, 1, b.Count)
}

func TestTracker_ConcurrentSubmissionsAreNotLost(t *testing.T) {
	store := session.NewInMemoryStore()
	h := core.BindSession(store, "s1")
	tr := NewTracker()

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := tr.RecordAndAggregate(context.Background(), h, 50)
			return err
		})
	}
	require.NoError(t, g.Wait())

	res := record(t, tr, h, 50)
	assert.Equal(t, 21, res.Count)
}

func TestTracker_DecodesSerializedState(t *testing.T) {
	store := testutil.NewSessionBuilder("s1").State(StateKey, json.RawMessage(`[60, 80]`)).Store()

	res := record(t, NewTracker(), core.BindSession(store, "s1"), 100)
	assert.Equal(t, 80, res.OverallPercentage)
	assert.Equal(t, 3, res.Count)

	store = testutil.NewSessionBuilder("s2").State(StateKey, []any{float64(10), 20}).Store()
	res = record(t, NewTracker(), core.BindSession(store, "s2"), 30)
	assert.Equal(t, 20, res.OverallPercentage)
}

func TestTracker_CorruptStateIsAnError(t *testing.T) {
	store := testutil.NewSessionBuilder("s1").State(StateKey, "not json").Store()

	_, err := NewTracker().RecordAndAggregate(context.Background(), core.BindSession(store, "s1"), 50)
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestTracker_CustomOptions(t *testing.T) {
	store := session.NewInMemoryStore()
	tr := NewTracker(func(o *Options) {
		o.StateKey = "quiz_history"
		o.Capacity = 2
	})
	res := record(t, tr, core.BindSession(store, "s1"), 0, 50, 100)
	assert.Equal(t, 75, res.OverallPercentage)

	sess, _ := store.Get(context.Background(), "s1")
	_, ok := sess.GetState("quiz_history")
	assert.True(t, ok)
}

func TestPercent(t *testing.T) {
	p, err := Percent(4, 5)
	require.NoError(t, err)
	assert.InDelta(t, 80, p, 1e-9)

	_, err = Percent(6, 5)
	assert.Error(t, err)
	_, err = Percent(1, 0)
	assert.Error(t, err)
	_, err = Percent(-1, 5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "points", verr.Field)
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, AggregateResult{Status: "success"}, Aggregate(NewScoreWindow(0)))
	assert.Equal(t, 67, Aggregate(NewScoreWindow(0, 50, 75, 75)).OverallPercentage)
}
