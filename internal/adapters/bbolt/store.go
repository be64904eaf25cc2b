// Package bbolt implements the ports.Storage interface using bbolt (embedded
// B+ tree). The daemon's running counters are JSON-serialized under a single
// bucket. Writes are transactional — a crash mid-write cannot corrupt
// previously committed counters. The pattern index itself is never stored
// here; it is rebuilt from the pattern file at startup.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/patmatch/internal/ports"
)

var (
	bucketStats = []byte("stats")
	keyCounters = []byte("counters")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStats persists the full counter set, overwriting any prior state.
func (s *Store) SaveStats(stats *ports.ServerStats) error {
	if stats == nil {
		return fmt.Errorf("nil stats")
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketStats)
		if err != nil {
			return err
		}
		return b.Put(keyCounters, data)
	})
}

// LoadStats retrieves the persisted counters.
// Returns nil, nil if none exist (fresh database).
func (s *Store) LoadStats() (*ports.ServerStats, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStats)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get(keyCounters); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var stats ports.ServerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return &stats, nil
}
