package synth

import (
	"context"
	"log/slog"

	"arbiter/internal/audit"
	"arbiter/internal/policy"
	"arbiter/internal/providers"
	"arbiter/internal/textsim"
)

// DefaultMaxAttempts bounds the regeneration loop per finding.
const DefaultMaxAttempts = 4

// Cross-finding reason codes. These are controller-level: they depend on the
// previously accepted findings of the same response, not on the finding
// alone.
const (
	reasonGuidanceRepeatsPrior policy.Reason = "guidance_repeats_prior_finding"
	reasonFixRepeatsPrior      policy.Reason = "fix_repeats_prior_finding"
)

// finding lifecycle states.
type regenState int

const (
	stateCandidate regenState = iota
	stateValidated
	stateRegenRequested
	stateExhausted
)

// controller corrects one finding at a time through bounded regeneration.
// Evidence is always locked: it was grounded deterministically by the
// resolver and the model never gets to change it.
type controller struct {
	gen         providers.Generator
	validator   *policy.Validator
	langTag     string
	maxAttempts int
	maxTokens   int
	crossMax    float64
	log         *slog.Logger
}

// finalize drives f to a terminal state. It returns the accepted finding and
// whether the deterministic fallback path was taken. It never fails and
// never exceeds maxAttempts validation rounds for this finding; termination
// is structural, not an emergent property of the loop bounds.
func (c *controller) finalize(ctx context.Context, f audit.Finding, accepted []audit.Finding) (audit.Finding, bool) {
	st := stateCandidate
	var reasons []policy.Reason
	attempt := 0
	for {
		switch st {
		case stateCandidate:
			attempt++
			reasons = c.validate(f, accepted)
			switch {
			case len(reasons) == 0:
				st = stateValidated
			case attempt >= c.maxAttempts:
				st = stateExhausted
			default:
				st = stateRegenRequested
			}
		case stateRegenRequested:
			c.log.Debug("regenerating finding fields",
				"attempt", attempt, "reasons", reasonStrings(reasons))
			f = c.regenerate(ctx, f, reasons)
			st = stateCandidate
		case stateValidated:
			return f, false
		case stateExhausted:
			c.log.Debug("regeneration exhausted, applying deterministic fallback",
				"reasons", reasonStrings(reasons))
			return applyFallback(f, reasons, c.langTag, accepted), true
		}
	}
}

// validate runs the full constraint set for f, including uniqueness against
// previously accepted findings of this response.
func (c *controller) validate(f audit.Finding, accepted []audit.Finding) []policy.Reason {
	var reasons []policy.Reason
	reasons = append(reasons, c.validator.CheckEvidence(f.Evidence)...)
	reasons = append(reasons, c.validator.CheckGuidance(f.Guidance, f.Evidence, c.langTag)...)
	reasons = append(reasons, c.validator.CheckFix(f.Fix, f.Evidence, c.langTag)...)
	reasons = append(reasons, c.validator.CheckRoleSeparation(f.Guidance, f.Fix)...)

	for _, prior := range accepted {
		if textsim.Jaccard(f.Guidance, prior.Guidance) >= c.crossMax {
			reasons = append(reasons, reasonGuidanceRepeatsPrior)
			break
		}
	}
	for _, prior := range accepted {
		if textsim.Jaccard(f.Fix, prior.Fix) >= c.crossMax {
			reasons = append(reasons, reasonFixRepeatsPrior)
			break
		}
	}
	return reasons
}

// regenerate asks the model for corrected versions of the failing fields
// only. A failed or unparsable regeneration leaves the finding unchanged;
// the attempt is still consumed.
func (c *controller) regenerate(ctx context.Context, f audit.Finding, reasons []policy.Reason) audit.Finding {
	needGuidance, needFix := classifyReasons(reasons)

	resp, err := c.gen.Generate(ctx, providers.GenerateRequest{
		SystemInstruction: SystemPrompt(),
		Prompt:            BuildRegenPrompt(f, reasons, needGuidance, needFix, c.langTag),
		MaxTokens:         c.maxTokens,
	})
	if err != nil {
		c.log.Warn("regeneration call failed, keeping current fields", "error", err)
		return f
	}

	patch, err := parsePatch(resp.Content)
	if err != nil {
		c.log.Warn("regeneration response unparsable, keeping current fields", "error", err)
		return f
	}

	if needGuidance && patch.Guidance != "" {
		f.Guidance = patch.Guidance
	}
	if needFix && len(patch.FixOptions) >= 2 {
		f.Fix = policy.FormatFix(patch.FixOptions[0], patch.FixOptions[1])
	}
	return f
}

// classifyReasons maps reason codes onto the fields that must be rewritten.
// Role collapse rewrites the fix: guidance carries the "why" and wins.
func classifyReasons(reasons []policy.Reason) (needGuidance, needFix bool) {
	for _, r := range reasons {
		switch r {
		case policy.ReasonGuidanceTooShort,
			policy.ReasonGuidanceImperative,
			policy.ReasonGuidanceEchoesEvidence,
			policy.ReasonGuidanceWrongLanguage,
			policy.ReasonGuidanceNoTranslation,
			reasonGuidanceRepeatsPrior:
			needGuidance = true
		case policy.ReasonFixFormat,
			policy.ReasonFixWrongLanguage,
			policy.ReasonFixCausalTerm,
			policy.ReasonFixInstructionVerb,
			policy.ReasonFixUngrounded,
			policy.ReasonFixCopiesEvidence,
			policy.ReasonRoleCollapse,
			reasonFixRepeatsPrior:
			needFix = true
		}
	}
	return needGuidance, needFix
}

func reasonStrings(reasons []policy.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
