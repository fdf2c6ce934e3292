// Package cli wires together the Cobra command tree for the arbiter binary.
//
// It defines the root command and all subcommands (audit, packs, config,
// cache, version), binds flags, reads configuration, invokes the synthesis
// engine, and returns deterministic exit codes for CI gating.
package cli
