// Package config loads and merges arbiter configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (ARBITER_PROVIDER, ARBITER_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/arbiter/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Init] to write a default config
// file, and [SetField] to update a single key.
package config
