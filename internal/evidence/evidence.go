// Package evidence grounds findings in the audited source text.
//
// Given the source, a model-supplied evidence candidate, and the finding's
// description, Resolve always produces a single non-empty sentence of at most
// MaxLen runes taken from (or derived from) the source. It never returns a
// placeholder and never fails; when nothing matches it degrades to the best
// keyword-overlap segment and finally to the first segment of the source.
package evidence

import (
	"strings"

	"arbiter/internal/policy"
)

// MaxLen is the evidence character cap, counted in runes.
const MaxLen = 250

// Keyword extraction bounds for description-based matching.
const (
	minKeywordLen = 4
	maxKeywords   = 8
)

// sentence terminators, including the Devanagari danda forms.
const terminators = ".!?।॥"

// Resolver locates grounded evidence sentences in source text.
type Resolver struct {
	vocab *policy.Vocab
}

// NewResolver builds a Resolver. A nil vocab selects the default placeholder
// set.
func NewResolver(vocab *policy.Vocab) *Resolver {
	if vocab == nil {
		vocab = policy.DefaultVocab()
	}
	return &Resolver{vocab: vocab}
}

// Resolve returns the best grounding sentence for a finding.
func (r *Resolver) Resolve(source, candidate, description string) string {
	segs := Segments(source)
	if len(segs) == 0 {
		return r.fallback(source, candidate, description)
	}

	if cand := strings.TrimSpace(candidate); cand != "" && !r.vocab.IsPlaceholder(cand) {
		// Exact substring match against candidate segments.
		for _, seg := range segs {
			if strings.Contains(seg, cand) || strings.Contains(cand, seg) {
				return Truncate(firstSentence(seg), MaxLen)
			}
		}
		// Normalized approximate match.
		normCand := normalizeForMatch(cand)
		if normCand != "" {
			for _, seg := range segs {
				normSeg := normalizeForMatch(seg)
				if strings.Contains(normSeg, normCand) || strings.Contains(normCand, normSeg) {
					return Truncate(firstSentence(seg), MaxLen)
				}
			}
		}
	}

	// Keyword-overlap scoring against the description.
	best := segs[0]
	bestScore := 0
	keywords := keywordTokens(description)
	if len(keywords) > 0 {
		for _, seg := range segs {
			score := overlapCount(seg, keywords)
			if score > bestScore {
				best = seg
				bestScore = score
			}
		}
	}
	return Truncate(firstSentence(best), MaxLen)
}

// Segments splits source text into candidate evidence lines. Newlines win;
// long single-line text falls back to punctuation-based sentence splits.
func Segments(source string) []string {
	var segs []string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sent := range splitSentences(line) {
			sent = strings.TrimSpace(sent)
			if sent != "" {
				segs = append(segs, sent)
			}
		}
	}
	return segs
}

// Truncate hard-caps s at max runes, cutting on a word boundary.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

func (r *Resolver) fallback(source, candidate, description string) string {
	for _, alt := range []string{source, candidate, description} {
		alt = strings.TrimSpace(alt)
		if alt != "" && !r.vocab.IsPlaceholder(alt) {
			return Truncate(firstSentence(alt), MaxLen)
		}
	}
	return "the submitted content"
}

func splitSentences(line string) []string {
	var sents []string
	var b strings.Builder
	for _, r := range line {
		b.WriteRune(r)
		if strings.ContainsRune(terminators, r) {
			sents = append(sents, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		sents = append(sents, b.String())
	}
	return sents
}

func firstSentence(s string) string {
	sents := splitSentences(strings.TrimSpace(s))
	if len(sents) == 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(sents[0])
}

func normalizeForMatch(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func keywordTokens(description string) []string {
	var keywords []string
	for _, tok := range strings.Fields(strings.ToLower(description)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if len([]rune(tok)) < minKeywordLen {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func overlapCount(seg string, keywords []string) int {
	lower := strings.ToLower(seg)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
