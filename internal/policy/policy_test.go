package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbiter/internal/lang"
)

const testEvidence = "This medicine guarantees 100% cure, no side effects ever."

const cleanGuidance = "Absolute health claims of this kind promise outcomes that " +
	"cannot be demonstrated for every consumer, and an average reader has no " +
	"way of judging the certainty asserted here."

func cleanFix() string {
	return FormatFix(
		"This medicine supports recovery for many people.",
		"Results with this medicine can vary from person to person.",
	)
}

func newTestValidator() *Validator {
	return NewValidator(nil, DefaultThresholds())
}

func TestCheckEvidence(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		evidence string
		want     []Reason
	}{
		{"valid", testEvidence, nil},
		{"empty", "", []Reason{ReasonEvidenceEmpty}},
		{"whitespace only", "   \n ", []Reason{ReasonEvidenceEmpty}},
		{"placeholder na", "N/A", []Reason{ReasonEvidencePlaceholder}},
		{"placeholder not available", "Not Available", []Reason{ReasonEvidencePlaceholder}},
		{"placeholder unknown", "unknown", []Reason{ReasonEvidencePlaceholder}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.CheckEvidence(tt.evidence))
		})
	}
}

func TestCheckEvidence_TooLong(t *testing.T) {
	v := newTestValidator()
	long := ""
	for len(long) < 300 {
		long += "overly long evidence sentence "
	}
	assert.Contains(t, v.CheckEvidence(long), ReasonEvidenceTooLong)
}

func TestCheckGuidance_Valid(t *testing.T) {
	v := newTestValidator()
	assert.Empty(t, v.CheckGuidance(cleanGuidance, testEvidence, lang.TagEnglish))
}

func TestCheckGuidance_ImperativeVerbs(t *testing.T) {
	v := newTestValidator()
	guidance := "You should remove the guarantee wording and ensure the claim " +
		"is supported by published trial data before this runs again."
	reasons := v.CheckGuidance(guidance, testEvidence, lang.TagEnglish)
	assert.Contains(t, reasons, ReasonGuidanceImperative)
}

func TestCheckGuidance_EchoesEvidence(t *testing.T) {
	v := newTestValidator()
	echo := "This medicine guarantees 100% cure with no side effects ever, " +
		"which is the statement shown in the advertisement under review today."
	reasons := v.CheckGuidance(echo, testEvidence, lang.TagEnglish)
	assert.Contains(t, reasons, ReasonGuidanceEchoesEvidence)
}

func TestCheckGuidance_TooShort(t *testing.T) {
	v := newTestValidator()
	reasons := v.CheckGuidance("Too short.", testEvidence, lang.TagEnglish)
	assert.Contains(t, reasons, ReasonGuidanceTooShort)
}

func TestCheckGuidance_Hindi(t *testing.T) {
	v := newTestValidator()
	body := "इस तरह के पूर्ण दावे हर उपभोक्ता के लिए सिद्ध नहीं किए जा सकते, और " +
		"पाठक के पास इनकी जाँच का कोई साधन नहीं होता।"

	// Missing the translation annotation line.
	reasons := v.CheckGuidance(body, testEvidence, lang.TagHindi)
	assert.Contains(t, reasons, ReasonGuidanceNoTranslation)

	// With the annotation the guidance passes.
	withTranslation := body + "\nTranslation: Absolute claims of this kind cannot be proven for every consumer."
	assert.Empty(t, v.CheckGuidance(withTranslation, testEvidence, lang.TagHindi))
}

func TestCheckGuidance_WrongLanguage(t *testing.T) {
	v := newTestValidator()
	reasons := v.CheckGuidance(cleanGuidance, testEvidence, lang.TagHindi)
	assert.Contains(t, reasons, ReasonGuidanceWrongLanguage)
}

func TestCheckFix_Valid(t *testing.T) {
	v := newTestValidator()
	assert.Empty(t, v.CheckFix(cleanFix(), testEvidence, lang.TagEnglish))
}

func TestCheckFix_Format(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name string
		fix  string
	}{
		{"empty", ""},
		{"single option", "Option 1: Something grounded here."},
		{"missing labels", "First choice text.\nSecond choice text."},
		{"three options", "Option 1: a\nOption 2: b\nOption 3: c"},
		{"empty option text", "Option 1: \nOption 2: something"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []Reason{ReasonFixFormat}, v.CheckFix(tt.fix, testEvidence, lang.TagEnglish))
		})
	}
}

func TestCheckFix_CausalTerm(t *testing.T) {
	v := newTestValidator()
	fix := FormatFix(
		"This medicine supports recovery because trials showed it.",
		"Results with this medicine can vary from person to person.",
	)
	assert.Contains(t, v.CheckFix(fix, testEvidence, lang.TagEnglish), ReasonFixCausalTerm)

	phrase := FormatFix(
		"This medicine helps many people in order to recover comfort.",
		"Results with this medicine can vary from person to person.",
	)
	assert.Contains(t, v.CheckFix(phrase, testEvidence, lang.TagEnglish), ReasonFixCausalTerm)
}

func TestCheckFix_InstructionVerb(t *testing.T) {
	v := newTestValidator()
	fix := FormatFix(
		"Remove the cure wording from this medicine claim.",
		"Results with this medicine can vary from person to person.",
	)
	assert.Contains(t, v.CheckFix(fix, testEvidence, lang.TagEnglish), ReasonFixInstructionVerb)
}

func TestCheckFix_GroundingInterval(t *testing.T) {
	v := newTestValidator()

	// Verbatim copy: total overlap.
	copyFix := FormatFix(testEvidence, "Results with this medicine can vary from person to person.")
	assert.Contains(t, v.CheckFix(copyFix, testEvidence, lang.TagEnglish), ReasonFixCopiesEvidence)

	// Unrelated text: zero overlap.
	unrelated := FormatFix(
		"Speak with a qualified professional today.",
		"Results with this medicine can vary from person to person.",
	)
	assert.Contains(t, v.CheckFix(unrelated, testEvidence, lang.TagEnglish), ReasonFixUngrounded)
}

func TestCheckRoleSeparation(t *testing.T) {
	v := newTestValidator()
	assert.Empty(t, v.CheckRoleSeparation(cleanGuidance, cleanFix()))

	collapsed := "This medicine supports recovery for many people and results " +
		"with this medicine can vary from person to person."
	assert.Equal(t, []Reason{ReasonRoleCollapse}, v.CheckRoleSeparation(collapsed, cleanFix()))
}

func TestSplitTranslation(t *testing.T) {
	body, tr := SplitTranslation("line one\nline two\nTranslation: the annotation")
	assert.Equal(t, "line one\nline two", body)
	assert.Equal(t, "the annotation", tr)

	body, tr = SplitTranslation("just guidance text")
	assert.Equal(t, "just guidance text", body)
	assert.Empty(t, tr)
}

func TestParseFixOptions(t *testing.T) {
	opts, ok := ParseFixOptions("Option 1: first\n\nOption 2: second\n")
	require.True(t, ok)
	assert.Equal(t, []string{"first", "second"}, opts)
}
