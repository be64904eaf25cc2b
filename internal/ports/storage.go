package ports

// Storage persists daemon match statistics to durable storage.
// The index itself is never persisted — it is rebuilt from the pattern file
// at every startup. Only the running counters survive restarts.
//
// Crash safety: SaveStats must be transactional. A crash mid-write must not
// corrupt previously committed counters.
type Storage interface {
	// SaveStats persists the full counter set. Overwrites any prior state.
	SaveStats(stats *ServerStats) error

	// LoadStats retrieves the persisted counters.
	// Returns nil, nil if none exist (fresh database).
	LoadStats() (*ServerStats, error)

	// Close releases the underlying database.
	Close() error
}

// ServerStats holds the daemon's cumulative counters. All counts are
// monotonic within a database lifetime; they are loaded at startup and
// flushed periodically and on shutdown.
type ServerStats struct {
	Queries      uint64            `json:"queries"`       // total query strings matched
	Matches      uint64            `json:"matches"`       // total results emitted
	Requests     uint64            `json:"requests"`      // total wire requests handled
	BadRequests  uint64            `json:"bad_requests"`  // malformed requests rejected
	Rebuilds     uint64            `json:"rebuilds"`      // pattern-file hot reloads
	CategoryHits map[string]uint64 `json:"category_hits"` // xref category -> result count
}
