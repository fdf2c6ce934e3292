package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbiter/internal/audit"
)

func sampleResult() *audit.Result {
	return &audit.Result{
		RunID:     "f3a1c9d2-0000-0000-0000-000000000000",
		AuditType: audit.SourceEmail,
		Language:  "en",
		RulePack:  "advertising-standards",
		Findings: []audit.Finding{
			{
				Index:       1,
				Severity:    audit.SeverityHigh,
				RulePack:    "health-claims",
				Description: "The copy promises a guaranteed medical outcome.",
				Evidence:    "This medicine guarantees a full cure.",
				Guidance:    "Absolute health claims promise outcomes that cannot be demonstrated for every consumer.",
				Fix:         "Option 1: This medicine supports recovery for many people.\nOption 2: Results with this medicine can vary from person to person.",
			},
		},
		RiskScore:   80,
		RiskLevel:   audit.RiskHigh,
		Status:      audit.StatusNonCompliant,
		Summary:     "The audit identified 1 compliance issue (1 high severity).",
		Actions:     []string{"Address the high-severity health-claims finding."},
		ContentHash: "abc123",
		Timing:      audit.Timing{LLMMs: 900, TotalMs: 1000},
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown", "md"} {
		w, err := GetWriter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}
	_, err := GetWriter("sarif")
	assert.Error(t, err)
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "email content")
	assert.Contains(t, out, "Status: NON_COMPLIANT | Risk: High (score 80/100)")
	assert.Contains(t, out, "Findings: 1 total (1 high)")
	assert.Contains(t, out, "[!!] Finding 1 — HIGH (health-claims)")
	assert.Contains(t, out, "Evidence:")
	assert.Contains(t, out, "Why this matters:")
	assert.Contains(t, out, "Suggested fix:")
	assert.Contains(t, out, "Option 1:")
	assert.Contains(t, out, "Option 2:")
	assert.Contains(t, out, "Recommended actions:")
	assert.Contains(t, out, "Completed in 1000ms (LLM: 900ms)")
}

func TestTextWriter_NoFindings(t *testing.T) {
	res := sampleResult()
	res.Findings = nil
	res.RiskScore = 100
	res.RiskLevel = audit.RiskHigh
	res.Status = audit.StatusNonCompliant
	res.Summary = "No compliance issues were identified in the submitted content."
	res.Cached = true

	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "Findings: 0 total\n")
	assert.Contains(t, out, "No compliance issues were identified")
	assert.Contains(t, out, "| cached |")
	assert.NotContains(t, out, "Evidence:")
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "## Arbiter Compliance Audit")
	assert.Contains(t, out, "| High     | 1    |")
	assert.Contains(t, out, "<details>")
	assert.Contains(t, out, "**Evidence:**")
	assert.Contains(t, out, "**Why this matters:**")
	assert.Contains(t, out, "**Suggested fix:**")
	assert.Contains(t, out, "- Option 2: Results with this medicine")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, sampleResult()))

	var got audit.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "NON_COMPLIANT", got.Status)
	require.Len(t, got.Findings, 1)
	assert.Equal(t, audit.SeverityHigh, got.Findings[0].Severity)
	assert.Equal(t, int64(900), got.Timing.LLMMs)
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	assert.Equal(t, []string{"one two", "three", "four five"}, lines)

	assert.Equal(t, []string{"short"}, wrapText("short", 20))
}
