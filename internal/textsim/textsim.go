// Package textsim computes token-set similarity between text fields.
//
// The metric is plain Jaccard over normalized tokens: case-folded,
// punctuation-stripped, whitespace-collapsed, with tokens shorter than three
// runes discarded. It is symmetric, deterministic, and ranges over [0,1];
// two empty token sets score 0.
//
// Three thresholds are used across the synthesis pipeline and are exported
// here as the single source of truth: guidance must not paraphrase evidence
// (GuidanceEvidenceMax), findings must not repeat each other
// (CrossFindingMax), and guidance must not collapse into the fix
// (GuidanceFixMax).
package textsim

import (
	"strings"
	"unicode"
)

// Policy thresholds. These are product policy values carried over from the
// rule set, not tuning suggestions.
const (
	GuidanceEvidenceMax = 0.35
	CrossFindingMax     = 0.40
	GuidanceFixMax      = 0.75
)

// minTokenLen drops short function words before comparison.
const minTokenLen = 3

// Tokens returns the normalized token set for s.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalize(s)) {
		if len([]rune(tok)) < minTokenLen {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// Jaccard returns the token-set similarity of a and b.
func Jaccard(a, b string) float64 {
	sa := Tokens(a)
	sb := Tokens(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
