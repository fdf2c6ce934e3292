package audit

// SourceType identifies where audited content came from.
type SourceType string

const (
	SourceText  SourceType = "text"
	SourceURL   SourceType = "url"
	SourceImage SourceType = "image"
	SourceAudio SourceType = "audio"
	SourceVideo SourceType = "video"
	SourceEmail SourceType = "email"
)

// ValidSourceType reports whether s is a member of the closed source enum.
func ValidSourceType(s SourceType) bool {
	switch s {
	case SourceText, SourceURL, SourceImage, SourceAudio, SourceVideo, SourceEmail:
		return true
	}
	return false
}

// Input is the normalized content handed to the synthesis pipeline.
// It is immutable once constructed; NewInput copies the metadata map.
type Input struct {
	Content  string
	Source   SourceType
	Metadata map[string]string
}

// NewInput constructs an Input, defaulting unknown source tags to text.
func NewInput(content string, source SourceType, metadata map[string]string) Input {
	if !ValidSourceType(source) {
		source = SourceText
	}
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	return Input{Content: content, Source: source, Metadata: meta}
}

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// NormalizeSeverity maps an untrusted severity label onto the closed enum.
// Unknown labels become medium, matching the scorer's treatment.
func NormalizeSeverity(label string) Severity {
	switch Severity(normalizeLabel(label)) {
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// Finding is one validated, policy-compliant compliance issue.
type Finding struct {
	Index       int      `json:"index"`
	Severity    Severity `json:"severity"`
	RulePack    string   `json:"rulePack"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Guidance    string   `json:"guidance"`
	Fix         string   `json:"fix"`
}

// RiskLevel is the qualitative level derived from the risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Compliance status values.
const (
	StatusCompliant    = "COMPLIANT"
	StatusNonCompliant = "NON_COMPLIANT"
)

// Timing contains performance metrics for one audit run.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Result is the top-level wire format returned to callers and stored in the
// result cache. RiskScore is always recomputed from Findings; a stored score
// is never trusted verbatim.
type Result struct {
	RunID       string     `json:"runId"`
	AuditType   SourceType `json:"auditType"`
	Language    string     `json:"language"`
	RulePack    string     `json:"rulePack"`
	Findings    []Finding  `json:"findings"`
	RiskScore   int        `json:"riskScore"`
	RiskLevel   RiskLevel  `json:"riskLevel"`
	Status      string     `json:"status"`
	Summary     string     `json:"summary"`
	Actions     []string   `json:"actions"`
	ContentHash string     `json:"contentHash"`
	Cached      bool       `json:"cached"`
	Timing      Timing     `json:"timing"`
}

// SeverityCounts holds finding counts by severity level.
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case SeverityLow:
			c.Low++
		case SeverityMedium:
			c.Medium++
		case SeverityHigh:
			c.High++
		case SeverityCritical:
			c.Critical++
		default:
			c.Medium++
		}
	}
	return c
}
