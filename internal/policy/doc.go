// Package policy implements the constraint validator: independent boolean
// predicates over guidance and fix text, each returning stable reason codes.
//
// The banned-word lists are explicit, named vocabulary data (vocab.go) rather
// than scattered literals, so gaps can be audited and deployments can extend
// them from a YAML file. The validator itself is side-effect free; acting on
// a failed predicate is the regeneration controller's job.
package policy
