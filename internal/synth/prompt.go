package synth

import (
	"fmt"
	"strings"

	"arbiter/internal/audit"
	"arbiter/internal/lang"
	"arbiter/internal/policy"
	"arbiter/internal/rulepack"
)

const systemPromptText = `You are a strict compliance auditor. Your job is to examine submitted content and produce structured findings in JSON format.

Rules:
1. Only flag statements actually present in the content. Quote evidence verbatim.
2. Rate severity as "low", "medium", "high", or "critical".
3. "guidance" explains WHY the statement is non-compliant (regulatory intent, reader harm). It must not contain instructions or imperative verbs, and must not restate the evidence.
4. "fixOptions" are exactly two ready-to-use replacement texts showing HOW to comply. Each is one line of replacement copy in the same language as the evidence. They must not explain, justify, or instruct.
5. Write every field in the language of the audited content.

You MUST respond with ONLY a JSON array of findings. No markdown, no explanation, no preamble. Just the JSON array.

Each finding must have this exact structure:
{
  "severity": "low|medium|high|critical",
  "rulePack": "name of the rule pack the finding maps to",
  "description": "what is wrong, in one or two sentences",
  "evidence": "the exact sentence from the content that triggered the finding",
  "guidance": "why this is non-compliant, without imperative verbs",
  "fixOptions": ["replacement text option one", "replacement text option two"]
}

If the content is fully compliant, respond with an empty array: []`

// SystemPrompt returns the system instruction for finding generation.
func SystemPrompt() string {
	return systemPromptText
}

// BuildUserPrompt constructs the generation prompt for one audit request.
func BuildUserPrompt(in audit.Input, pack rulepack.Pack, langTag string, maxFindings int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Audit the following %s content.\n\n", in.Source)

	if maxFindings > 0 {
		fmt.Fprintf(&b, "Return at most %d findings.\n", maxFindings)
	}
	if langTag != lang.TagEnglish {
		fmt.Fprintf(&b, "The content language is %q. Write guidance and fix options in that language, and end the guidance with a final line %q followed by an English translation.\n",
			langTag, policy.TranslationPrefix)
	}

	b.WriteString("\n")
	b.WriteString(pack.PromptSection())

	if sender := in.Metadata["sender"]; sender != "" {
		fmt.Fprintf(&b, "\nSender: %s\n", sender)
	}
	if filename := in.Metadata["filename"]; filename != "" {
		fmt.Fprintf(&b, "Filename: %s\n", filename)
	}

	b.WriteString("\n--- BEGIN CONTENT ---\n")
	b.WriteString(in.Content)
	b.WriteString("\n--- END CONTENT ---\n")

	return b.String()
}

// BuildRepairPrompt asks the model to fix a response that failed to parse.
func BuildRepairPrompt(parseErr error, prior string) string {
	return fmt.Sprintf(
		"Your previous response was not valid JSON. The error was: %s\n\nPlease fix it and respond with ONLY a valid JSON array of findings.\n\nYour previous response was:\n%s",
		parseErr.Error(), prior,
	)
}

// BuildRegenPrompt constructs a scoped regeneration prompt: already-correct
// fields are locked and restated, only the failing fields are requested.
func BuildRegenPrompt(f audit.Finding, reasons []policy.Reason, needGuidance, needFix bool, langTag string) string {
	var b strings.Builder

	b.WriteString("A compliance finding failed validation and needs corrected fields.\n\n")
	b.WriteString("Locked fields (do NOT change these):\n")
	fmt.Fprintf(&b, "- severity: %s\n", f.Severity)
	fmt.Fprintf(&b, "- rulePack: %s\n", f.RulePack)
	fmt.Fprintf(&b, "- description: %s\n", f.Description)
	fmt.Fprintf(&b, "- evidence: %s\n", f.Evidence)

	b.WriteString("\nValidation failures:\n")
	for _, r := range reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	b.WriteString("\nRespond with ONLY a JSON object containing the corrected fields:\n{")
	if needGuidance {
		b.WriteString(`
  "guidance": "why the evidence is non-compliant; no imperative verbs; do not restate the evidence; different wording than any fix option"`)
		if needFix {
			b.WriteString(",")
		}
	}
	if needFix {
		b.WriteString(`
  "fixOptions": ["replacement text option one", "replacement text option two"]`)
	}
	b.WriteString("\n}\n")

	if langTag != lang.TagEnglish {
		fmt.Fprintf(&b, "\nWrite the fields in language %q. End the guidance with a final line %q followed by an English translation.\n",
			langTag, policy.TranslationPrefix)
	}

	return b.String()
}
