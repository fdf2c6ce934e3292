// Package audit defines the core data model for compliance audits.
//
// It holds the immutable AuditInput, the normalized Finding shape that every
// model response must be reduced to, and the Result wire format returned to
// callers. The JSON field names on Finding and Result are a frozen contract;
// renaming or reordering them is a breaking change for downstream consumers.
//
// Summary and action derivation (assemble.go) is deterministic: the same
// finding set always produces the same summary text and the same ordered
// action list.
package audit
