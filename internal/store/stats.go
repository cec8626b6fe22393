package store

// Stats is a point-in-time snapshot of a store's counters.
type Stats struct {
	Size    int    `json:"size"`
	Added   uint64 `json:"added"`
	Removed uint64 `json:"removed"`
	Expired uint64 `json:"expired"`
	Evicted uint64 `json:"evicted"`
}

// Stats returns a copy of the internal counters. Removed counts explicit
// deletes only; Expired counts sweeper removals; Evicted counts limit
// overflow removals.
func (s *ExpiringStore[K, V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Size:    len(s.data),
		Added:   s.stats.added,
		Removed: s.stats.removed,
		Expired: s.stats.expired,
		Evicted: s.stats.evicted,
	}
}
