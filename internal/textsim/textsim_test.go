package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	set := Tokens("The offer, THE OFFER! is 100% free...")
	assert.Contains(t, set, "the")
	assert.Contains(t, set, "offer")
	assert.Contains(t, set, "free")
	assert.Contains(t, set, "100")
	assert.NotContains(t, set, "is")
	assert.Len(t, set, 4)
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0},
		{"one empty", "some words here", "", 0},
		{"identical", "this product cures everything", "this product cures everything", 1},
		{"punctuation and case invariant", "Guaranteed Results!", "guaranteed... results", 1},
		{"disjoint", "alpha beta gamma", "delta epsilon zeta", 0},
		{"short tokens ignored", "a an it", "of to in", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	a := "the treatment guarantees complete recovery"
	b := "complete recovery cannot be guaranteed for any treatment"
	assert.InDelta(t, Jaccard(a, b), Jaccard(b, a), 1e-9)
}

func TestJaccard_PartialOverlap(t *testing.T) {
	// 2 shared tokens (results, instant) of 4 total.
	got := Jaccard("instant results promised", "instant results shown")
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestJaccard_Range(t *testing.T) {
	pairs := [][2]string{
		{"one two three", "three four five"},
		{"", "nonempty text value"},
		{"same same", "same"},
	}
	for _, p := range pairs {
		v := Jaccard(p[0], p[1])
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
