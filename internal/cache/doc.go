// Package cache provides idempotent, content-hash-keyed storage of finalized
// audit results.
//
// Keys are SHA-256 digests of the canonically normalized input text joined
// with the audit-type tag and the rule-pack version. Normalization lowercases,
// collapses whitespace, and canonicalizes punctuation variants (smart quotes,
// dashes, ellipses) so cosmetically different but logically identical inputs
// hash the same. A rule-pack version bump changes the hash input and
// naturally misses old entries; entries are never mutated or invalidated
// otherwise.
//
// Caching is a best-effort optimization: lookup and store failures are
// logged and ignored, and two concurrent requests may both miss and both
// write (at-least-once semantics). Stored risk scores are never trusted; the
// scorer re-runs over stored findings on every hit.
package cache
