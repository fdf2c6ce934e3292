// Package synth turns untrusted generative-model responses into stable,
// policy-compliant audit results.
//
// The engine (engine.go) runs the full pipeline for one request: cache
// lookup, a single model call, JSON parsing with one repair pass, per-finding
// normalization through the evidence resolver, bounded regeneration of
// findings that fail the constraint validator, cross-finding uniqueness
// checks, deterministic scoring, and result assembly.
//
// Regeneration (regen.go) is an explicit bounded state machine: a finding
// moves Candidate -> Validated, or loops Candidate -> RegenerationRequested
// -> Candidate at most maxAttempts times before the ExhaustedFallback state
// replaces the failing fields with deterministic, rule-derived text. The
// terminal fallback never calls the model, so the pipeline always terminates
// even against an uncooperative provider. Transport and auth failures
// surface to the caller; policy violations never do.
package synth
