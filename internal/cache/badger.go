package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"arbiter/internal/audit"
)

// BadgerStore persists audit results in an embedded Badger database. Values
// are JSON-encoded results keyed by the raw content hash; entries carry no
// TTL because hashed inputs never change meaning.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger store at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// FindByHash implements Store.
func (s *BadgerStore) FindByHash(hash string) (*audit.Result, bool, error) {
	var res audit.Result
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &res)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return &res, true, nil
}

// Store implements Store.
func (s *BadgerStore) Store(hash string, res *audit.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(hash), data)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Stats describes the contents of a badger-backed store.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
}

// GetStats counts entries and their stored sizes.
func (s *BadgerStore) GetStats() (Stats, error) {
	var stats Stats
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			stats.Entries++
			stats.TotalBytes += it.Item().ValueSize()
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return stats, nil
}

// Clear removes every entry.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}
