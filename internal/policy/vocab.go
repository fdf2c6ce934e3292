package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocab holds the closed word sets the validator checks against. The defaults
// are the audited rule set; a YAML file can extend them per deployment.
// Missing a verb here is a correctness bug, not a style issue, so the lists
// live in one place where gaps are easy to spot.
type Vocab struct {
	// ActionVerbs are imperative/instructional verbs banned from guidance.
	ActionVerbs []string `yaml:"actionVerbs"`
	// CausalWords are explanatory terms banned from fix text.
	CausalWords []string `yaml:"causalWords"`
	// InstructionVerbs are the smaller imperative set banned from fix text.
	InstructionVerbs []string `yaml:"instructionVerbs"`
	// Placeholders are evidence values treated as absent.
	Placeholders []string `yaml:"placeholders"`

	actionSet      map[string]bool
	instructionSet map[string]bool
	causalWordSet  map[string]bool
	causalPhrases  []string
	placeholderSet map[string]bool
}

// DefaultVocab returns the built-in rule vocabulary.
func DefaultVocab() *Vocab {
	v := &Vocab{
		ActionVerbs: []string{
			"add", "adjust", "alter", "amend", "apply", "avoid", "change",
			"check", "clarify", "consider", "consult", "correct", "create",
			"delete", "disclose", "edit", "eliminate", "ensure", "fix",
			"follow", "implement", "include", "insert", "limit", "mention",
			"modify", "obtain", "provide", "publish", "qualify", "remove",
			"rephrase", "replace", "restrict", "revise", "reword", "rewrite",
			"soften", "specify", "state", "submit", "substitute", "update",
			"use", "verify", "write",
		},
		CausalWords: []string{
			"because", "since", "therefore", "thus", "hence",
			"in order to", "due to", "as a result", "so that",
			"risk", "risks", "risky", "harm", "harmful", "harms",
			"regulator", "regulators", "regulation", "regulations",
			"regulatory", "compliance", "compliant", "non-compliant",
			"penalty", "penalties", "violation", "violations", "violates",
			"law", "laws", "legal", "illegal", "unlawful", "prohibited",
			"banned", "misleading", "deceptive",
		},
		InstructionVerbs: []string{
			"add", "avoid", "change", "delete", "ensure", "include",
			"insert", "remove", "replace", "rewrite", "substitute", "use",
		},
		Placeholders: []string{
			"n/a", "na", "none", "null", "not available", "unknown",
		},
	}
	v.index()
	return v
}

// LoadVocab reads a YAML vocabulary file and merges it over the defaults.
// Listed words extend the default sets; they never shrink them.
func LoadVocab(path string) (*Vocab, error) {
	v := DefaultVocab()
	if path == "" {
		return v, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	var extra Vocab
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	v.ActionVerbs = append(v.ActionVerbs, extra.ActionVerbs...)
	v.CausalWords = append(v.CausalWords, extra.CausalWords...)
	v.InstructionVerbs = append(v.InstructionVerbs, extra.InstructionVerbs...)
	v.Placeholders = append(v.Placeholders, extra.Placeholders...)
	v.index()
	return v, nil
}

func (v *Vocab) index() {
	v.actionSet = toSet(v.ActionVerbs)
	v.instructionSet = toSet(v.InstructionVerbs)
	v.placeholderSet = toSet(v.Placeholders)
	v.causalWordSet = make(map[string]bool)
	v.causalPhrases = nil
	for _, w := range v.CausalWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if strings.ContainsRune(w, ' ') {
			v.causalPhrases = append(v.causalPhrases, w)
		} else {
			v.causalWordSet[w] = true
		}
	}
}

// IsPlaceholder reports whether s is a known evidence placeholder.
func (v *Vocab) IsPlaceholder(s string) bool {
	return v.placeholderSet[strings.ToLower(strings.TrimSpace(s))]
}

// FirstActionVerb returns the first banned imperative verb found in text,
// or "" when text is clean.
func (v *Vocab) FirstActionVerb(text string) string {
	return firstInSet(text, v.actionSet)
}

// FirstInstructionVerb returns the first banned fix-instruction verb in text.
func (v *Vocab) FirstInstructionVerb(text string) string {
	return firstInSet(text, v.instructionSet)
}

// FirstCausalTerm returns the first causal/explanatory term found in text.
func (v *Vocab) FirstCausalTerm(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range v.causalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return firstInSet(text, v.causalWordSet)
}

func firstInSet(text string, set map[string]bool) string {
	for _, word := range wordsOf(text) {
		if set[word] {
			return word
		}
	}
	return ""
}

// wordsOf splits text into lowercase words, stripping surrounding
// punctuation but keeping internal hyphens (non-compliant, ready-to-use).
func wordsOf(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]{}“”‘’")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}
	return set
}
