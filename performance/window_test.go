package performance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreWindow_FIFOEviction(t *testing.T) {
	w := NewScoreWindow(3)
	for _, s := range []float64{1, 2, 3} {
		w.Append(s)
	}
	assert.Equal(t, []float64{1, 2, 3}, w.Scores())

	w.Append(4)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []float64{2, 3, 4}, w.Scores())
}

func TestScoreWindow_LengthTracksSubmissions(t *testing.T) {
	w := NewScoreWindow(0)
	require.Equal(t, WindowCapacity, w.Cap())
	for i := 1; i <= 40; i++ {
		w.Append(float64(i))
		if i <= WindowCapacity {
			assert.Equal(t, i, w.Len())
		} else {
			assert.Equal(t, WindowCapacity, w.Len())
			assert.Equal(t, float64(i-WindowCapacity+1), w.Scores()[0])
		}
	}
}

func TestScoreWindow_ScoresIsACopy(t *testing.T) {
	w := NewScoreWindow(5, 10, 20)
	s := w.Scores()
	s[0] = 99
	assert.Equal(t, []float64{10, 20}, w.Scores())
}

func TestScoreWindow_MeanEmpty(t *testing.T) {
	assert.Zero(t, NewScoreWindow(5).Mean())
}

func TestScoreWindow_JSON(t *testing.T) {
	w := NewScoreWindow(3, 50, 60)
	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `[50,60]`, string(b))

	empty, err := json.Marshal(NewScoreWindow(3))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(empty))

	var decoded ScoreWindow
	require.NoError(t, json.Unmarshal([]byte(`[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24,25,26,27]`), &decoded))
	assert.Equal(t, WindowCapacity, decoded.Len())
	assert.Equal(t, float64(3), decoded.Scores()[0])
}
