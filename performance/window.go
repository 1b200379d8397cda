package performance

import (
	"encoding/json"
	"slices"
)

// WindowCapacity is the number of recent scores retained per session.
const WindowCapacity = 25

// ScoreWindow is a bounded FIFO of percentages, oldest first.
type ScoreWindow struct {
	capacity int
	scores   []float64
}

// NewScoreWindow returns a window with the given capacity holding the most
// recent of the supplied scores. A non-positive capacity means WindowCapacity.
func NewScoreWindow(capacity int, scores ...float64) *ScoreWindow {
	if capacity <= 0 {
		capacity = WindowCapacity
	}
	if len(scores) > capacity {
		scores = scores[len(scores)-capacity:]
	}
	return &ScoreWindow{capacity: capacity, scores: slices.Clone(scores)}
}

// Append adds score, dropping the oldest entry first when the window is full.
func (w *ScoreWindow) Append(score float64) {
	if len(w.scores) >= w.capacity {
		w.scores = slices.Delete(w.scores, 0, len(w.scores)-w.capacity+1)
	}
	w.scores = append(w.scores, score)
}

// Len returns the number of retained scores.
func (w *ScoreWindow) Len() int { return len(w.scores) }

// Cap returns the window capacity.
func (w *ScoreWindow) Cap() int { return w.capacity }

// Scores returns a copy of the retained scores, oldest first.
func (w *ScoreWindow) Scores() []float64 { return slices.Clone(w.scores) }

// Mean returns the arithmetic mean of the window, or 0 when empty.
func (w *ScoreWindow) Mean() float64 {
	if len(w.scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.scores {
		sum += s
	}
	return sum / float64(len(w.scores))
}

// MarshalJSON encodes the window as a plain array of scores.
func (w *ScoreWindow) MarshalJSON() ([]byte, error) {
	if w.scores == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.scores)
}

// UnmarshalJSON decodes an array of scores, keeping only the newest ones when
// the array exceeds the capacity.
func (w *ScoreWindow) UnmarshalJSON(b []byte) error {
	var scores []float64
	if err := json.Unmarshal(b, &scores); err != nil {
		return err
	}
	*w = *NewScoreWindow(w.capacity, scores...)
	return nil
}
