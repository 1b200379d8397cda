package imagegen

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of a and b over
// characters, where M is the number of characters in matching blocks and T
// the total length of both strings. Two empty strings are identical.
//
// The ratio is not symmetric: matching blocks are found against b, so callers
// comparing against a fixed reference must keep it in the b position.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
