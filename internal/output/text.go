package output

import (
	"fmt"
	"io"
	"strings"

	"arbiter/internal/audit"
)

// Frozen per-finding section headings. Downstream consumers parse these.
const (
	headingEvidence = "Evidence:"
	headingGuidance = "Why this matters:"
	headingFix      = "Suggested fix:"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *audit.Result) error {
	ew := &errWriter{w: w}
	c := audit.CountBySeverity(res.Findings)
	total := len(res.Findings)

	ew.printf("Arbiter Compliance Audit — %s content\n", res.AuditType)
	ew.printf("Rule pack: %s | Language: %s\n", res.RulePack, res.Language)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Status: %s | Risk: %s (score %d/100)\n", res.Status, res.RiskLevel, res.RiskScore)
	ew.printf("Findings: %d total", total)
	if total > 0 {
		parts := make([]string, 0, 4)
		if c.Critical > 0 {
			parts = append(parts, fmt.Sprintf("%d critical", c.Critical))
		}
		if c.High > 0 {
			parts = append(parts, fmt.Sprintf("%d high", c.High))
		}
		if c.Medium > 0 {
			parts = append(parts, fmt.Sprintf("%d medium", c.Medium))
		}
		if c.Low > 0 {
			parts = append(parts, fmt.Sprintf("%d low", c.Low))
		}
		ew.printf(" (%s)", strings.Join(parts, ", "))
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	ew.println("")
	for _, line := range wrapText(res.Summary, 76) {
		ew.println(line)
	}

	for _, f := range res.Findings {
		ew.printf("\n%s Finding %d — %s (%s)\n",
			severityIcon(f.Severity), f.Index, strings.ToUpper(string(f.Severity)), f.RulePack)
		for _, line := range wrapText(f.Description, 72) {
			ew.printf("  %s\n", line)
		}
		ew.printf("  %s\n", headingEvidence)
		ew.printf("    %q\n", f.Evidence)
		ew.printf("  %s\n", headingGuidance)
		for _, line := range wrapText(f.Guidance, 70) {
			ew.printf("    %s\n", line)
		}
		ew.printf("  %s\n", headingFix)
		for _, opt := range strings.Split(f.Fix, "\n") {
			ew.printf("    %s\n", opt)
		}
	}

	if len(res.Actions) > 0 {
		ew.println("\nRecommended actions:")
		for i, a := range res.Actions {
			ew.printf("  %d. %s\n", i+1, a)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	cached := ""
	if res.Cached {
		cached = " | cached"
	}
	ew.printf("Run %s%s | Completed in %dms (LLM: %dms)\n",
		res.RunID, cached, res.Timing.TotalMs, res.Timing.LLMMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s audit.Severity) string {
	switch s {
	case audit.SeverityCritical, audit.SeverityHigh:
		return "[!!]"
	case audit.SeverityMedium:
		return "[!]"
	case audit.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var cur strings.Builder
	for _, word := range words {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
