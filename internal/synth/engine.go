package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbiter/internal/audit"
	"arbiter/internal/cache"
	"arbiter/internal/evidence"
	"arbiter/internal/lang"
	"arbiter/internal/policy"
	"arbiter/internal/providers"
	"arbiter/internal/rulepack"
	"arbiter/internal/score"
	"arbiter/internal/textsim"
)

// ErrMalformedResponse reports a model response that failed to parse even
// after the repair pass. The pipeline never fabricates a finding set to
// paper over it.
var ErrMalformedResponse = errors.New("model response is not valid findings JSON")

const defaultMaxTokens = 8192

// Options holds the pipeline policy knobs. Every threshold is a named
// product value with a default; none are invented at call sites.
type Options struct {
	RulePack        string
	MaxFindings     int
	MaxAttempts     int
	MaxTokens       int
	Language        string // "" = detect from content
	CrossFindingMax float64
	Score           score.Thresholds
	Policy          policy.Thresholds
}

// DefaultOptions returns the audited defaults.
func DefaultOptions() Options {
	return Options{
		RulePack:        rulepack.DefaultPack,
		MaxFindings:     10,
		MaxAttempts:     DefaultMaxAttempts,
		MaxTokens:       defaultMaxTokens,
		CrossFindingMax: textsim.CrossFindingMax,
		Score:           score.DefaultThresholds(),
		Policy:          policy.DefaultThresholds(),
	}
}

// Engine is the audit response synthesis and validation pipeline.
type Engine struct {
	gen       providers.Generator
	cache     *cache.Manager
	packs     *rulepack.Registry
	validator *policy.Validator
	resolver  *evidence.Resolver
	opts      Options
	log       *slog.Logger
}

// New wires an Engine. The generator is an explicit dependency so tests can
// substitute a deterministic fake.
func New(gen providers.Generator, cacheMgr *cache.Manager, packs *rulepack.Registry, validator *policy.Validator, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheMgr == nil {
		cacheMgr = cache.NewManager(nil, logger)
	}
	if validator == nil {
		validator = policy.NewValidator(nil, opts.Policy)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.CrossFindingMax <= 0 {
		opts.CrossFindingMax = textsim.CrossFindingMax
	}
	return &Engine{
		gen:       gen,
		cache:     cacheMgr,
		packs:     packs,
		validator: validator,
		resolver:  evidence.NewResolver(validator.Vocab()),
		opts:      opts,
		log:       logger.With("component", "synth"),
	}
}

// Audit runs the full pipeline for one input and returns a finalized,
// policy-compliant result. Callers only ever see a complete result or an
// explicit error; partially validated findings never escape.
func (e *Engine) Audit(ctx context.Context, in audit.Input) (*audit.Result, error) {
	start := time.Now()

	langTag := e.opts.Language
	if langTag == "" {
		langTag = lang.Detect(in.Content)
	}
	pack := e.packs.Get(e.opts.RulePack)
	hash := cache.Hash(in.Content, string(in.Source), pack.VersionTag())

	if res, ok := e.cache.Lookup(hash); ok {
		// Never trust the stored score: recompute from stored findings so
		// scoring-rule changes apply retroactively.
		score.Apply(res, e.opts.Score)
		res.Cached = true
		res.Timing.TotalMs = time.Since(start).Milliseconds()
		return res, nil
	}

	llmStart := time.Now()
	raws, err := e.generateFindings(ctx, in, pack, langTag)
	if err != nil {
		return nil, err
	}

	ctrl := &controller{
		gen:         e.gen,
		validator:   e.validator,
		langTag:     langTag,
		maxAttempts: e.opts.MaxAttempts,
		maxTokens:   e.opts.MaxTokens,
		crossMax:    e.opts.CrossFindingMax,
		log:         e.log,
	}

	accepted := make([]audit.Finding, 0, len(raws))
	for _, rf := range raws {
		if e.opts.MaxFindings > 0 && len(accepted) >= e.opts.MaxFindings {
			break
		}
		f := audit.Finding{
			Severity:    audit.NormalizeSeverity(rf.Severity),
			RulePack:    packLabel(rf.RulePack, pack),
			Description: strings.TrimSpace(rf.Description),
			Evidence:    e.resolver.Resolve(in.Content, rf.Evidence, rf.Description),
			Guidance:    strings.TrimSpace(rf.Guidance),
			Fix:         fixFromOptions(rf.FixOptions),
		}
		f, fellBack := ctrl.finalize(ctx, f, accepted)
		if fellBack {
			e.log.Debug("finding accepted via fallback", "index", len(accepted)+1)
		}
		f.Index = len(accepted) + 1
		accepted = append(accepted, f)
	}
	llmMs := time.Since(llmStart).Milliseconds()

	res := &audit.Result{
		RunID:       uuid.NewString(),
		AuditType:   in.Source,
		Language:    langTag,
		RulePack:    pack.Name,
		Findings:    accepted,
		Summary:     audit.SummaryText(accepted),
		Actions:     audit.TopActions(accepted),
		ContentHash: hash,
		Timing: audit.Timing{
			LLMMs:   llmMs,
			TotalMs: time.Since(start).Milliseconds(),
		},
	}
	score.Apply(res, e.opts.Score)

	e.cache.Save(hash, res)
	return res, nil
}

// generateFindings performs the single model call plus one repair pass for
// malformed JSON. Transport errors are never retried here.
func (e *Engine) generateFindings(ctx context.Context, in audit.Input, pack rulepack.Pack, langTag string) ([]rawFinding, error) {
	req := providers.GenerateRequest{
		SystemInstruction: SystemPrompt(),
		Prompt:            BuildUserPrompt(in, pack, langTag, e.opts.MaxFindings),
		MaxTokens:         e.opts.MaxTokens,
	}

	resp, err := e.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generating findings: %w", err)
	}

	raws, parseErr := parseFindings(resp.Content)
	if parseErr == nil {
		return raws, nil
	}

	repairReq := providers.GenerateRequest{
		SystemInstruction: SystemPrompt(),
		Prompt:            BuildRepairPrompt(parseErr, resp.Content),
		MaxTokens:         e.opts.MaxTokens,
	}
	resp2, err := e.gen.Generate(ctx, repairReq)
	if err != nil {
		return nil, fmt.Errorf("repair pass failed: %w (original error: %w)", err, parseErr)
	}
	raws, parseErr = parseFindings(resp2.Content)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, parseErr)
	}
	return raws, nil
}

func packLabel(label string, pack rulepack.Pack) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return pack.Name
	}
	return label
}

func fixFromOptions(opts []string) string {
	if len(opts) >= 2 {
		return policy.FormatFix(opts[0], opts[1])
	}
	return ""
}
