package imagegen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"abcd", "bcde", 0.75},
		{"ABCDEFG", "XBCDYFGZ", 2.0 * 5 / 15},
		{Signature, Signature, 1},
		{"Imagen API is only available to billed users at this time.", Signature, 0.9230769230769231},
		{"Imagen API only accessible to billed users.", Signature, 0.8431372549019608},
		{"Imagen API is only accessible to billed accounts right now.", Signature, 0.7796610169491526},
		{"The prompt was blocked by safety filters.", Signature, 0.28},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestSimilarity_Asymmetric(t *testing.T) {
	a := "Internal server error"
	assert.InDelta(t, 0.225, Similarity(a, Signature), 1e-9)
	assert.InDelta(t, 0.2, Similarity(Signature, a), 1e-9)
}

func TestClassify_ComparesMessageAgainstSignature(t *testing.T) {
	cf := Classify(errors.New("Internal server error"))
	assert.InDelta(t, 0.225, cf.Similarity, 1e-9)
	assert.False(t, cf.FallbackEligible)
}
