package audit

import (
	"fmt"
	"sort"
	"strings"
)

// maxActions caps the recommended-action list in a result.
const maxActions = 3

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SummaryText produces the deterministic one-paragraph summary for a finding
// set. Identical finding sets always yield identical summaries.
func SummaryText(findings []Finding) string {
	if len(findings) == 0 {
		return "No compliance issues were identified in the submitted content."
	}
	c := CountBySeverity(findings)
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
	noun := "issues"
	if len(findings) == 1 {
		noun = "issue"
	}
	return fmt.Sprintf("The audit identified %d compliance %s (%s severity). Each finding below includes the triggering evidence, the regulatory concern, and ready-to-use replacement text.",
		len(findings), noun, strings.Join(parts, ", "))
}

// TopActions derives up to three recommended actions from the most severe
// findings. The derivation is deterministic: findings are ordered by severity
// rank descending, then by their original index.
func TopActions(findings []Finding) []string {
	if len(findings) == 0 {
		return []string{"Content may be published as submitted."}
	}
	ordered := make([]Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return SeverityRank(ordered[i].Severity) > SeverityRank(ordered[j].Severity)
	})

	actions := make([]string, 0, maxActions)
	for _, f := range ordered {
		if len(actions) == maxActions {
			break
		}
		actions = append(actions, fmt.Sprintf("Address the %s-severity %s finding: apply one of the suggested replacement options for %q.",
			f.Severity, f.RulePack, shorten(f.Evidence, 60)))
	}
	return actions
}

func shorten(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	cut := string(r[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
