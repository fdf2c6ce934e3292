package synth

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawFinding is the as-received, untrusted JSON shape returned by the model.
// It never leaves this package; every field passes through normalization and
// validation before reaching a caller.
type rawFinding struct {
	Severity    string   `json:"severity"`
	RulePack    string   `json:"rulePack"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Guidance    string   `json:"guidance"`
	FixOptions  []string `json:"fixOptions"`
}

// fieldPatch is the JSON shape requested during scoped regeneration: only
// the failing fields, everything else stays locked.
type fieldPatch struct {
	Guidance   string   `json:"guidance"`
	FixOptions []string `json:"fixOptions"`
}

func parseFindings(content string) ([]rawFinding, error) {
	content = stripFences(content)

	var raw []rawFinding
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	return raw, nil
}

func parsePatch(content string) (fieldPatch, error) {
	content = stripFences(content)

	var patch fieldPatch
	if err := json.Unmarshal([]byte(content), &patch); err != nil {
		return fieldPatch{}, fmt.Errorf("invalid JSON object: %w", err)
	}
	return patch, nil
}

// stripFences removes a surrounding markdown code fence, which models add
// despite instructions not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	start := 1
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
