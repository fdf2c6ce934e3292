package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbiter/internal/audit"
	"arbiter/internal/cache"
	"arbiter/internal/lang"
	"arbiter/internal/policy"
	"arbiter/internal/providers"
	"arbiter/internal/rulepack"
	"arbiter/internal/textsim"
)

const (
	testEvidence = "This medicine guarantees 100% cure, no side effects ever."

	testContent = "Limited time offer for subscribers. " + testEvidence +
		" Order before Friday while stocks last."

	cleanGuidance = "Absolute health claims of this kind promise outcomes that " +
		"cannot be demonstrated for every consumer, and an average reader has no " +
		"way of judging the certainty asserted here."

	altGuidance = "Promises framed as certainties overstate what any treatment " +
		"can deliver, leaving an ordinary buyer without a realistic picture of " +
		"likely results."

	// Starts with a banned imperative verb; everything else about it is fine.
	imperativeGuidance = "Remove the absolute guarantee wording and restate the " +
		"promise in terms a reader can actually verify on request."
)

func cleanFixOptions() []string {
	return []string{
		"This medicine supports recovery for many people.",
		"Results with this medicine can vary from person to person.",
	}
}

func altFixOptions() []string {
	return []string{
		"This medicine may ease symptoms for some users.",
		"Outcomes from this medicine differ across individuals.",
	}
}

// scriptedGen replays canned responses in call order.
type scriptedGen struct {
	replies []string
	errs    []error
	calls   []providers.GenerateRequest
}

func (g *scriptedGen) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
	i := len(g.calls)
	g.calls = append(g.calls, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return providers.GenerateResponse{}, g.errs[i]
	}
	if i >= len(g.replies) {
		return providers.GenerateResponse{}, fmt.Errorf("unexpected model call %d", i+1)
	}
	return providers.GenerateResponse{Content: g.replies[i], TokensUsed: 10}, nil
}

func (g *scriptedGen) Name() string { return "scripted" }

func findingsJSON(t *testing.T, findings ...rawFinding) string {
	t.Helper()
	data, err := json.Marshal(findings)
	require.NoError(t, err)
	return string(data)
}

func patchJSON(t *testing.T, patch fieldPatch) string {
	t.Helper()
	data, err := json.Marshal(patch)
	require.NoError(t, err)
	return string(data)
}

func validRaw(severity string) rawFinding {
	return rawFinding{
		Severity:    severity,
		RulePack:    "health-claims",
		Description: "The copy promises a guaranteed medical outcome.",
		Evidence:    testEvidence,
		Guidance:    cleanGuidance,
		FixOptions:  cleanFixOptions(),
	}
}

func newTestEngine(t *testing.T, gen providers.Generator, store cache.Store, opts Options) *Engine {
	t.Helper()
	packs, err := rulepack.Load("")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(gen, cache.NewManager(store, logger), packs, nil, opts, logger)
}

func TestAudit_SingleValidFinding(t *testing.T) {
	gen := &scriptedGen{replies: []string{findingsJSON(t, validRaw("high"))}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Len(t, gen.calls, 1)

	f := res.Findings[0]
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, audit.SeverityHigh, f.Severity)
	assert.Equal(t, testEvidence, f.Evidence)
	assert.Equal(t, cleanGuidance, f.Guidance)
	assert.Equal(t, policy.FormatFix(cleanFixOptions()[0], cleanFixOptions()[1]), f.Fix)

	assert.Equal(t, lang.TagEnglish, res.Language)
	assert.Equal(t, 80, res.RiskScore)
	assert.Equal(t, audit.RiskHigh, res.RiskLevel)
	assert.Equal(t, audit.StatusNonCompliant, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.NotEmpty(t, res.ContentHash)
	assert.False(t, res.Cached)
	assert.Contains(t, res.Summary, "1 compliance issue")
	require.Len(t, res.Actions, 1)
	assert.Contains(t, res.Actions[0], "high-severity")
}

func TestAudit_NoFindings(t *testing.T) {
	gen := &scriptedGen{replies: []string{"[]"}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceEmail, nil))
	require.NoError(t, err)

	assert.Empty(t, res.Findings)
	assert.Equal(t, 100, res.RiskScore)
	// A score of 100 sits above both the level and the compliance cutoffs,
	// so even a clean response is reported as high risk and non-compliant.
	assert.Equal(t, audit.RiskHigh, res.RiskLevel)
	assert.Equal(t, audit.StatusNonCompliant, res.Status)
	assert.Equal(t, audit.SourceEmail, res.AuditType)
	require.Len(t, res.Actions, 1)
	assert.Contains(t, res.Actions[0], "published as submitted")
}

func TestAudit_RepairPassRecoversMalformedJSON(t *testing.T) {
	gen := &scriptedGen{replies: []string{
		"Here are the findings:\n1. The guarantee claim is a problem.",
		findingsJSON(t, validRaw("medium")),
	}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	require.Len(t, gen.calls, 2)
	assert.Contains(t, gen.calls[1].Prompt, "not valid JSON")
	require.Len(t, res.Findings, 1)
	assert.Equal(t, audit.SeverityMedium, res.Findings[0].Severity)
}

func TestAudit_MalformedAfterRepair(t *testing.T) {
	gen := &scriptedGen{replies: []string{"not json", "still not json"}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	_, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Len(t, gen.calls, 2)
}

func TestAudit_TransportErrorSurfaces(t *testing.T) {
	wantErr := errors.New("connection refused")
	gen := &scriptedGen{errs: []error{wantErr}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	_, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Len(t, gen.calls, 1)
}

func TestAudit_RegeneratesImperativeGuidance(t *testing.T) {
	bad := validRaw("high")
	bad.Guidance = imperativeGuidance
	gen := &scriptedGen{replies: []string{
		findingsJSON(t, bad),
		patchJSON(t, fieldPatch{Guidance: cleanGuidance}),
	}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	require.Len(t, gen.calls, 2)

	regen := gen.calls[1].Prompt
	assert.Contains(t, regen, "Locked fields")
	assert.Contains(t, regen, testEvidence)
	assert.Contains(t, regen, string(policy.ReasonGuidanceImperative))
	assert.NotContains(t, regen, "fixOptions")

	require.Len(t, res.Findings, 1)
	assert.Equal(t, cleanGuidance, res.Findings[0].Guidance)
	assert.Equal(t, testEvidence, res.Findings[0].Evidence)
}

func TestAudit_FallbackAfterExhaustedAttempts(t *testing.T) {
	bad := validRaw("critical")
	bad.Guidance = imperativeGuidance
	opts := DefaultOptions()
	opts.MaxAttempts = 2
	gen := &scriptedGen{replies: []string{
		findingsJSON(t, bad),
		patchJSON(t, fieldPatch{Guidance: imperativeGuidance}),
	}}
	e := newTestEngine(t, gen, nil, opts)

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	assert.Len(t, gen.calls, 2)

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, fallbackGuidance(testEvidence, lang.TagEnglish, nil), f.Guidance)
	assert.Contains(t, f.Guidance, `"This medicine guarantees 100%`)
	// Only the guidance failed; the fix survives untouched.
	assert.Equal(t, policy.FormatFix(cleanFixOptions()[0], cleanFixOptions()[1]), f.Fix)
	assert.Equal(t, testEvidence, f.Evidence)
}

func TestAudit_CrossFindingGuidanceDeduplicated(t *testing.T) {
	first := validRaw("high")
	second := validRaw("medium")
	second.Evidence = testEvidence
	second.FixOptions = altFixOptions()
	// Identical guidance to the first finding; must be rewritten.
	gen := &scriptedGen{replies: []string{
		findingsJSON(t, first, second),
		patchJSON(t, fieldPatch{Guidance: altGuidance}),
	}}
	e := newTestEngine(t, gen, nil, DefaultOptions())

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	require.Len(t, gen.calls, 2)
	assert.Contains(t, gen.calls[1].Prompt, "guidance_repeats_prior_finding")

	require.Len(t, res.Findings, 2)
	assert.Equal(t, cleanGuidance, res.Findings[0].Guidance)
	assert.Equal(t, altGuidance, res.Findings[1].Guidance)
	assert.Equal(t, 1, res.Findings[0].Index)
	assert.Equal(t, 2, res.Findings[1].Index)
	assert.Equal(t, 70, res.RiskScore)
}

func TestAudit_MaxFindingsCapsOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxFindings = 1
	gen := &scriptedGen{replies: []string{findingsJSON(t, validRaw("high"), validRaw("low"))}}
	e := newTestEngine(t, gen, nil, opts)

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	assert.Len(t, res.Findings, 1)
}

func TestAudit_CacheHitSkipsModel(t *testing.T) {
	gen := &scriptedGen{replies: []string{findingsJSON(t, validRaw("high"))}}
	store := cache.NewMemoryStore()
	e := newTestEngine(t, gen, store, DefaultOptions())
	in := audit.NewInput(testContent, audit.SourceText, nil)

	first, err := e.Audit(context.Background(), in)
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Len(t, gen.calls, 1)

	second, err := e.Audit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Len(t, gen.calls, 1)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.RiskScore, second.RiskScore)
}

func TestAudit_CacheHitRescoresStoredFindings(t *testing.T) {
	gen := &scriptedGen{replies: []string{findingsJSON(t, validRaw("high"))}}
	store := cache.NewMemoryStore()
	e := newTestEngine(t, gen, store, DefaultOptions())
	in := audit.NewInput(testContent, audit.SourceText, nil)

	_, err := e.Audit(context.Background(), in)
	require.NoError(t, err)

	// Stricter deployment: the same stored findings now read as compliant
	// only above a higher bar.
	opts := DefaultOptions()
	opts.Score.NonCompliantMin = 90
	strict := newTestEngine(t, gen, store, opts)
	res, err := strict.Audit(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 80, res.RiskScore)
	assert.Equal(t, audit.StatusCompliant, res.Status)
}

func TestAudit_NormalizedContentSharesCacheEntry(t *testing.T) {
	gen := &scriptedGen{replies: []string{findingsJSON(t, validRaw("high"))}}
	store := cache.NewMemoryStore()
	e := newTestEngine(t, gen, store, DefaultOptions())

	_, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)

	curly := strings.ReplaceAll(testContent, "100%", "100% ")
	res, err := e.Audit(context.Background(), audit.NewInput("  "+curly+"  ", audit.SourceText, nil))
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Len(t, gen.calls, 1)
}

func TestAudit_DetectsHindiContent(t *testing.T) {
	hindi := "यह दवा हर बीमारी को पूरी तरह ठीक करने की गारंटी देती है।"
	raw := rawFinding{
		Severity:    "high",
		Description: "The copy promises a guaranteed medical outcome.",
		Evidence:    hindi,
		Guidance:    imperativeGuidance,
		FixOptions:  cleanFixOptions(),
	}
	opts := DefaultOptions()
	opts.MaxAttempts = 1
	gen := &scriptedGen{replies: []string{findingsJSON(t, raw)}}
	e := newTestEngine(t, gen, nil, opts)

	res, err := e.Audit(context.Background(), audit.NewInput(hindi, audit.SourceText, nil))
	require.NoError(t, err)
	assert.Equal(t, lang.TagHindi, res.Language)
	assert.Contains(t, gen.calls[0].Prompt, policy.TranslationPrefix)

	// English guidance and fix fail the language check and exhaust the
	// single attempt, so both fall back to the Hindi templates.
	require.Len(t, res.Findings, 1)
	g := res.Findings[0].Guidance
	assert.Equal(t, fallbackGuidance(hindi, lang.TagHindi, nil), g)
	assert.Contains(t, g, policy.TranslationPrefix)
	body, translation := policy.SplitTranslation(g)
	assert.NotEmpty(t, translation)
	assert.True(t, lang.Matches(body, lang.TagHindi))
	assert.True(t, lang.Matches(res.Findings[0].Fix, lang.TagHindi))
}

func TestAudit_FallbackGuidanceUniqueAcrossFindings(t *testing.T) {
	first := validRaw("high")
	first.Guidance = imperativeGuidance
	second := validRaw("medium")
	second.Guidance = imperativeGuidance
	second.FixOptions = altFixOptions()
	opts := DefaultOptions()
	opts.MaxAttempts = 2
	// Both regeneration patches repeat the imperative phrasing, so both
	// findings exhaust their attempts and take the deterministic path.
	gen := &scriptedGen{replies: []string{
		findingsJSON(t, first, second),
		patchJSON(t, fieldPatch{Guidance: imperativeGuidance}),
		patchJSON(t, fieldPatch{Guidance: imperativeGuidance}),
	}}
	e := newTestEngine(t, gen, nil, opts)

	res, err := e.Audit(context.Background(), audit.NewInput(testContent, audit.SourceText, nil))
	require.NoError(t, err)
	assert.Len(t, gen.calls, 3)
	require.Len(t, res.Findings, 2)

	g0, g1 := res.Findings[0].Guidance, res.Findings[1].Guidance
	assert.NotEqual(t, g0, g1)
	assert.Less(t, textsim.Jaccard(g0, g1), textsim.CrossFindingMax)
}
