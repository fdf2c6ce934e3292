package cache

import (
	"crypto/sha256"
	"fmt"
	"log/slog"

	"arbiter/internal/audit"
)

// Hash computes the cache key for an audit request.
func Hash(content, auditType, rulePackVersion string) string {
	material := Normalize(content) + "|" + auditType + "|" + rulePackVersion
	sum := sha256.Sum256([]byte(material))
	return fmt.Sprintf("%x", sum)
}

// Store is the narrow persistence contract the manager depends on. Both
// methods may fail; the manager absorbs every failure.
type Store interface {
	FindByHash(hash string) (*audit.Result, bool, error)
	Store(hash string, res *audit.Result) error
	Close() error
}

// Manager wraps a Store with the pipeline-facing, never-failing cache
// behavior.
type Manager struct {
	store   Store
	log     *slog.Logger
	enabled bool
}

// NewManager creates a Manager. A nil store disables caching entirely.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   store,
		log:     logger.With("component", "cache"),
		enabled: store != nil,
	}
}

// Enabled reports whether a backing store is configured.
func (m *Manager) Enabled() bool { return m.enabled }

// Lookup returns a previously finalized result for hash. Only completed
// results (non-empty status) count as hits; errors are logged and treated as
// misses.
func (m *Manager) Lookup(hash string) (*audit.Result, bool) {
	if !m.enabled {
		return nil, false
	}
	res, ok, err := m.store.FindByHash(hash)
	if err != nil {
		m.log.Warn("cache lookup failed, treating as miss", "hash", hash, "error", err)
		return nil, false
	}
	if !ok || res == nil || res.Status == "" {
		return nil, false
	}
	m.log.Debug("cache hit", "hash", hash, "findings", len(res.Findings))
	return res, true
}

// Save stores a finalized result. Failures are logged and swallowed; the
// response has already been synthesized and must still reach the caller.
func (m *Manager) Save(hash string, res *audit.Result) {
	if !m.enabled || res == nil {
		return
	}
	if err := m.store.Store(hash, res); err != nil {
		m.log.Warn("cache store failed, continuing", "hash", hash, "error", err)
		return
	}
	m.log.Debug("cache store", "hash", hash)
}

// Close releases the backing store.
func (m *Manager) Close() error {
	if !m.enabled {
		return nil
	}
	return m.store.Close()
}
