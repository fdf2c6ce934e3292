// Package score computes the deterministic risk score for an audit result.
//
// The score is a pure function of finding severities: start at 100 and
// deduct per finding, clamped to [0,100]. It is always recomputed from stored
// findings; cached scores are treated as advisory only, so scoring-rule
// changes apply retroactively to cached data.
//
// The qualitative risk level and the compliance status are governed by
// separate cutoffs. They coincide at 70 by default but are deliberately
// independent knobs; see Thresholds.
package score

import "arbiter/internal/audit"

// Per-severity deductions.
const (
	DeductHigh   = 20 // also applied to critical
	DeductMedium = 10
	DeductLow    = 5
)

// Thresholds holds the level and status cutoffs. Level and status are
// distinct rules evaluated on the same score.
type Thresholds struct {
	// LevelHighMin is the minimum score for the High risk level.
	LevelHighMin int `yaml:"levelHighMin"`
	// LevelMediumMin is the minimum score for the Medium risk level.
	LevelMediumMin int `yaml:"levelMediumMin"`
	// NonCompliantMin is the minimum score for NON_COMPLIANT status.
	NonCompliantMin int `yaml:"nonCompliantMin"`
}

// DefaultThresholds returns the audited cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LevelHighMin:    70,
		LevelMediumMin:  40,
		NonCompliantMin: 70,
	}
}

// Compute returns the risk score for a finding set. Unknown severities count
// as medium.
func Compute(findings []audit.Finding) int {
	s := 100
	for _, f := range findings {
		switch f.Severity {
		case audit.SeverityHigh, audit.SeverityCritical:
			s -= DeductHigh
		case audit.SeverityLow:
			s -= DeductLow
		default:
			s -= DeductMedium
		}
	}
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Level maps a score to its qualitative risk level.
func Level(s int, t Thresholds) audit.RiskLevel {
	switch {
	case s >= t.LevelHighMin:
		return audit.RiskHigh
	case s >= t.LevelMediumMin:
		return audit.RiskMedium
	default:
		return audit.RiskLow
	}
}

// Status maps a score to the compliance status.
func Status(s int, t Thresholds) string {
	if s >= t.NonCompliantMin {
		return audit.StatusNonCompliant
	}
	return audit.StatusCompliant
}

// Apply recomputes score, level, and status on a result in place. Used both
// after synthesis and on every cache hit.
func Apply(res *audit.Result, t Thresholds) {
	res.RiskScore = Compute(res.Findings)
	res.RiskLevel = Level(res.RiskScore, t)
	res.Status = Status(res.RiskScore, t)
}
