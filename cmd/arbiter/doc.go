// Arbiter is a CLI for auditing marketing and advertising content with
// generative model providers.
//
// It audits text, files, stdin, and batches of files against compliance rule
// packs, validating and stabilizing every model finding before emitting
// structured results with deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	arbiter audit text "This medicine guarantees a full cure."
//	arbiter audit file newsletter.eml          # audit a file (type inferred)
//	arbiter audit stdin < landing-page.txt     # audit standard input
//	arbiter audit batch campaigns/*.txt        # audit files concurrently
//	arbiter packs                              # list available rule packs
//	arbiter cache show                         # inspect the result cache
package main
