package policy

import (
	"strings"

	"arbiter/internal/lang"
	"arbiter/internal/textsim"
)

// Reason identifies which constraint a field violated. Reason codes are
// stable strings; the regeneration controller folds them into prompts.
type Reason string

const (
	ReasonEvidenceEmpty       Reason = "evidence_empty"
	ReasonEvidencePlaceholder Reason = "evidence_placeholder"
	ReasonEvidenceTooLong     Reason = "evidence_too_long"

	ReasonGuidanceTooShort       Reason = "guidance_too_short"
	ReasonGuidanceImperative     Reason = "guidance_imperative_verb"
	ReasonGuidanceEchoesEvidence Reason = "guidance_echoes_evidence"
	ReasonGuidanceWrongLanguage  Reason = "guidance_wrong_language"
	ReasonGuidanceNoTranslation  Reason = "guidance_missing_translation"

	ReasonFixFormat          Reason = "fix_format"
	ReasonFixWrongLanguage   Reason = "fix_wrong_language"
	ReasonFixCausalTerm      Reason = "fix_causal_term"
	ReasonFixInstructionVerb Reason = "fix_instruction_verb"
	ReasonFixUngrounded      Reason = "fix_ungrounded"
	ReasonFixCopiesEvidence  Reason = "fix_copies_evidence"

	ReasonRoleCollapse Reason = "guidance_fix_collapse"
)

// Fix block format. Frozen wire contract: two labeled single-line options.
const (
	FixOption1Prefix = "Option 1:"
	FixOption2Prefix = "Option 2:"
)

// TranslationPrefix marks the permitted trailing translation line in
// non-default-language guidance.
const TranslationPrefix = "Translation:"

// Thresholds are the named policy constants. Overridable via config, never
// silently tuned.
type Thresholds struct {
	// MaxEvidenceLen caps evidence at a single short sentence.
	MaxEvidenceLen int
	// MinGuidanceLen rejects one-liner guidance that cannot explain intent.
	MinGuidanceLen int
	// GuidanceEvidenceMax flags guidance that paraphrases its evidence.
	GuidanceEvidenceMax float64
	// GuidanceFixMax flags guidance that collapses into the fix.
	GuidanceFixMax float64
	// FixEvidenceMin / FixEvidenceMax bound the open interval of acceptable
	// fix-to-evidence lexical overlap: a grounded rewrite, not a copy and
	// not unrelated text.
	FixEvidenceMin float64
	FixEvidenceMax float64
}

// DefaultThresholds returns the audited policy values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxEvidenceLen:      250,
		MinGuidanceLen:      40,
		GuidanceEvidenceMax: textsim.GuidanceEvidenceMax,
		GuidanceFixMax:      textsim.GuidanceFixMax,
		FixEvidenceMin:      0.10,
		FixEvidenceMax:      0.90,
	}
}

// Validator evaluates the constraint predicates. It has no side effects and
// performs no regeneration; callers act on the returned reason codes.
type Validator struct {
	vocab *Vocab
	t     Thresholds
}

// NewValidator builds a Validator. A nil vocab selects the defaults.
func NewValidator(vocab *Vocab, t Thresholds) *Validator {
	if vocab == nil {
		vocab = DefaultVocab()
	}
	return &Validator{vocab: vocab, t: t}
}

// Vocab exposes the validator's vocabulary for collaborators that share the
// placeholder set.
func (v *Validator) Vocab() *Vocab { return v.vocab }

// Thresholds returns the active policy thresholds.
func (v *Validator) Thresholds() Thresholds { return v.t }

// CheckEvidence validates the grounded evidence sentence.
func (v *Validator) CheckEvidence(evidence string) []Reason {
	var reasons []Reason
	trimmed := strings.TrimSpace(evidence)
	if trimmed == "" {
		return append(reasons, ReasonEvidenceEmpty)
	}
	if v.vocab.IsPlaceholder(trimmed) {
		reasons = append(reasons, ReasonEvidencePlaceholder)
	}
	if len([]rune(trimmed)) > v.t.MaxEvidenceLen {
		reasons = append(reasons, ReasonEvidenceTooLong)
	}
	return reasons
}

// CheckGuidance validates the "why" text against the evidence it explains
// and the declared language.
func (v *Validator) CheckGuidance(guidance, evidence, langTag string) []Reason {
	var reasons []Reason
	body, translation := SplitTranslation(guidance)
	if len([]rune(strings.TrimSpace(body))) < v.t.MinGuidanceLen {
		reasons = append(reasons, ReasonGuidanceTooShort)
	}
	if verb := v.vocab.FirstActionVerb(body); verb != "" {
		reasons = append(reasons, ReasonGuidanceImperative)
	}
	if textsim.Jaccard(body, evidence) >= v.t.GuidanceEvidenceMax {
		reasons = append(reasons, ReasonGuidanceEchoesEvidence)
	}
	if !lang.Matches(body, langTag) {
		reasons = append(reasons, ReasonGuidanceWrongLanguage)
	}
	if langTag != lang.TagEnglish && translation == "" {
		reasons = append(reasons, ReasonGuidanceNoTranslation)
	}
	return reasons
}

// CheckFix validates the "how" block: exactly two labeled single-line
// options, each in the declared language, free of causal and instructional
// vocabulary, and lexically grounded in the evidence without copying it.
func (v *Validator) CheckFix(fix, evidence, langTag string) []Reason {
	opts, ok := ParseFixOptions(fix)
	if !ok {
		return []Reason{ReasonFixFormat}
	}
	var reasons []Reason
	for _, opt := range opts {
		if !lang.Matches(opt, langTag) {
			reasons = appendUnique(reasons, ReasonFixWrongLanguage)
		}
		if term := v.vocab.FirstCausalTerm(opt); term != "" {
			reasons = appendUnique(reasons, ReasonFixCausalTerm)
		}
		if verb := v.vocab.FirstInstructionVerb(opt); verb != "" {
			reasons = appendUnique(reasons, ReasonFixInstructionVerb)
		}
		overlap := textsim.Jaccard(opt, evidence)
		if overlap <= v.t.FixEvidenceMin {
			reasons = appendUnique(reasons, ReasonFixUngrounded)
		}
		if overlap >= v.t.FixEvidenceMax {
			reasons = appendUnique(reasons, ReasonFixCopiesEvidence)
		}
	}
	return reasons
}

// CheckRoleSeparation flags guidance and fix that say the same thing.
// Guidance explains why, fix shows how; their collapse is a policy violation.
func (v *Validator) CheckRoleSeparation(guidance, fix string) []Reason {
	if textsim.Jaccard(guidance, fix) >= v.t.GuidanceFixMax {
		return []Reason{ReasonRoleCollapse}
	}
	return nil
}

// SplitTranslation separates guidance into its body and the optional
// trailing translation annotation line.
func SplitTranslation(guidance string) (body, translation string) {
	lines := strings.Split(strings.TrimSpace(guidance), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if len(lines) > 1 && strings.HasPrefix(last, TranslationPrefix) {
		body = strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
		translation = strings.TrimSpace(strings.TrimPrefix(last, TranslationPrefix))
		return body, translation
	}
	return strings.TrimSpace(guidance), ""
}

// ParseFixOptions splits a fix block into its two options. ok is false when
// the block deviates from the frozen two-option format.
func ParseFixOptions(fix string) (opts []string, ok bool) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(fix), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 {
		return nil, false
	}
	if !strings.HasPrefix(lines[0], FixOption1Prefix) || !strings.HasPrefix(lines[1], FixOption2Prefix) {
		return nil, false
	}
	opt1 := strings.TrimSpace(strings.TrimPrefix(lines[0], FixOption1Prefix))
	opt2 := strings.TrimSpace(strings.TrimPrefix(lines[1], FixOption2Prefix))
	if opt1 == "" || opt2 == "" {
		return nil, false
	}
	return []string{opt1, opt2}, true
}

// FormatFix renders two option texts into the frozen fix block.
func FormatFix(opt1, opt2 string) string {
	return FixOption1Prefix + " " + strings.TrimSpace(opt1) + "\n" +
		FixOption2Prefix + " " + strings.TrimSpace(opt2)
}

func appendUnique(reasons []Reason, r Reason) []Reason {
	for _, have := range reasons {
		if have == r {
			return reasons
		}
	}
	return append(reasons, r)
}
