package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/metrics"
)

// StateKey is the session state key holding the score window.
const StateKey = "recent_percentages"

// AggregateResult is the outcome of recording one score.
type AggregateResult struct {
	Status            string `json:"status"`
	OverallPercentage int    `json:"overall_percentage"`
	Count             int    `json:"count"`
}

// Options configures a Tracker.
type Options struct {
	// StateKey overrides the session state key (default "recent_percentages").
	StateKey string
	// Capacity overrides the window size (default WindowCapacity).
	Capacity int
	Logger   logging.Logger
}

// Tracker maintains per-session rolling score windows.
type Tracker struct {
	stateKey string
	capacity int
	logger   logging.Logger
}

// NewTracker creates a tracker with the given options.
func NewTracker(optFns ...func(o *Options)) *Tracker {
	opts := Options{
		StateKey: StateKey,
		Capacity: WindowCapacity,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Capacity <= 0 {
		opts.Capacity = WindowCapacity
	}
	return &Tracker{stateKey: opts.StateKey, capacity: opts.Capacity, logger: opts.Logger}
}

// RecordAndAggregate appends score to the session's window and returns the
// rounded mean of the retained scores. An invalid score leaves the window
// untouched and yields a *ValidationError.
func (t *Tracker) RecordAndAggregate(ctx context.Context, state core.StateHandle, score float64) (AggregateResult, error) {
	if err := Validate(score); err != nil {
		return AggregateResult{}, err
	}

	var result AggregateResult
	err := state.UpdateState(ctx, t.stateKey, func(current any, ok bool) (any, error) {
		w, err := decodeWindow(current, ok, t.capacity)
		if err != nil {
			return nil, err
		}
		w.Append(score)
		result = AggregateResult{
			Status:            "success",
			OverallPercentage: roundPercent(w.Mean()),
			Count:             w.Len(),
		}
		return w.Scores(), nil
	})
	if err != nil {
		return AggregateResult{}, fmt.Errorf("update score window: %w", err)
	}

	metrics.ScoresRecorded.Observe(score)
	t.logger.Debug("performance.recorded",
		"session_id", state.SessionID(),
		"score", score,
		"count", result.Count,
		"overall_percentage", result.OverallPercentage,
	)
	return result, nil
}

// Aggregate computes the result for an existing window without mutating it.
func Aggregate(w *ScoreWindow) AggregateResult {
	return AggregateResult{Status: "success", OverallPercentage: roundPercent(w.Mean()), Count: w.Len()}
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}

// decodeWindow rebuilds a window from whatever representation the session
// store handed back.
func decodeWindow(v any, ok bool, capacity int) (*ScoreWindow, error) {
	if !ok || v == nil {
		return NewScoreWindow(capacity), nil
	}
	switch t := v.(type) {
	case *ScoreWindow:
		return NewScoreWindow(capacity, t.scores...), nil
	case []float64:
		return NewScoreWindow(capacity, t...), nil
	case []any:
		scores := make([]float64, 0, len(t))
		for i, e := range t {
			f, err := toFloat(e)
			if err != nil {
				return nil, fmt.Errorf("score window entry %d: %w", i, err)
			}
			scores = append(scores, f)
		}
		return NewScoreWindow(capacity, scores...), nil
	case json.RawMessage:
		return unmarshalWindow(t, capacity)
	case []byte:
		return unmarshalWindow(t, capacity)
	case string:
		return unmarshalWindow([]byte(t), capacity)
	default:
		return nil, fmt.Errorf("unsupported score window type %T", v)
	}
}

func unmarshalWindow(b []byte, capacity int) (*ScoreWindow, error) {
	w := &ScoreWindow{capacity: capacity}
	if err := json.Unmarshal(b, w); err != nil {
		return nil, fmt.Errorf("decode score window: %w", err)
	}
	return w, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unsupported score type %T", v)
	}
}
