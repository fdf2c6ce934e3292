package output

import (
	"fmt"
	"io"
	"strings"

	"arbiter/internal/audit"
)

// MarkdownWriter outputs a report-friendly markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *audit.Result) error {
	c := audit.CountBySeverity(res.Findings)

	fmt.Fprintf(w, "## Arbiter Compliance Audit\n\n")
	fmt.Fprintf(w, "**Status:** %s | **Risk:** %s (score %d/100) | **Rule pack:** %s | **Language:** %s\n\n",
		res.Status, res.RiskLevel, res.RiskScore, res.RulePack, res.Language)

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Critical | %d    |\n", c.Critical)
	fmt.Fprintf(w, "| High     | %d    |\n", c.High)
	fmt.Fprintf(w, "| Medium   | %d    |\n", c.Medium)
	fmt.Fprintf(w, "| Low      | %d    |\n", c.Low)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", len(res.Findings))

	fmt.Fprintf(w, "%s\n\n", res.Summary)

	for _, f := range res.Findings {
		icon := mdSeverityIcon(f.Severity)
		fmt.Fprintf(w, "<details>\n<summary>%s Finding %d — %s (%s)</summary>\n\n",
			icon, f.Index, strings.ToUpper(string(f.Severity)), f.RulePack)
		fmt.Fprintf(w, "%s\n\n", f.Description)
		fmt.Fprintf(w, "**%s**\n\n> %s\n\n", headingEvidence, f.Evidence)
		fmt.Fprintf(w, "**%s**\n\n%s\n\n", headingGuidance, f.Guidance)
		fmt.Fprintf(w, "**%s**\n\n", headingFix)
		for _, opt := range strings.Split(f.Fix, "\n") {
			fmt.Fprintf(w, "- %s\n", opt)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	if len(res.Actions) > 0 {
		fmt.Fprintf(w, "**Recommended actions:**\n\n")
		for i, a := range res.Actions {
			fmt.Fprintf(w, "%d. %s\n", i+1, a)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "*Run `%s` | audited in %dms (LLM: %dms)*\n",
		res.RunID, res.Timing.TotalMs, res.Timing.LLMMs)

	return nil
}

func mdSeverityIcon(s audit.Severity) string {
	switch s {
	case audit.SeverityCritical:
		return ":red_circle:"
	case audit.SeverityHigh:
		return ":orange_circle:"
	case audit.SeverityMedium:
		return ":yellow_circle:"
	case audit.SeverityLow:
		return ":white_circle:"
	default:
		return ":grey_question:"
	}
}
