package store

import (
	"encoding/json"
	"errors"
	"iter"
	"sync"
	"time"
)

// DefaultSweepInterval is used when Config.SweepInterval is left zero.
const DefaultSweepInterval = 5 * time.Second

var (
	ErrNegativeExpire        = errors.New("store: expire must not be negative")
	ErrNegativeSweepInterval = errors.New("store: sweep interval must not be negative")
	ErrNegativeLimit         = errors.New("store: limit must not be negative")
)

// Config controls construction of an ExpiringStore.
//
// Expire is the maximum idle time before an entry becomes eligible for
// eviction; zero disables expiration entirely. SweepInterval is the delay
// between background eviction scans (defaults to DefaultSweepInterval).
// Limit, when positive, caps the entry count: overflowing inserts evict the
// least recently used entry. OnEvict, when set, is called (outside the store
// lock) for every entry removed by the sweeper or by limit overflow; explicit
// Delete and Clear do not trigger it.
type Config[K comparable, V any] struct {
	Expire        time.Duration
	SweepInterval time.Duration
	Limit         int
	OnEvict       func(key K, value V)
}

// entry pairs a key with its value for snapshots and eviction reporting.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// ExpiringStore is a key-unique, insertion-ordered map with optional
// idle-based expiration. Reads through Get count as activity and reset an
// entry's eviction clock; Has does not. A background sweeper runs only while
// expiration is enabled and the store is non-empty.
//
// All operations are safe for concurrent use.
type ExpiringStore[K comparable, V any] struct {
	mu       sync.RWMutex
	data     map[K]V
	lastUsed map[K]int64 // unix millis of last Set/Get while expiration active
	order    []K         // insertion order of live keys

	expire        time.Duration
	sweepInterval time.Duration
	limit         int
	onEvict       func(K, V)

	// sweepStop is non-nil exactly while a sweeper goroutine is running;
	// closing it tells that goroutine to exit.
	sweepStop chan struct{}
	wg        sync.WaitGroup

	stats struct {
		added   uint64
		removed uint64
		expired uint64
		evicted uint64
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Ensure ExpiringStore implements Iterable at compile time.
var _ Iterable[string, any] = (*ExpiringStore[string, any])(nil)

// New constructs an ExpiringStore. Negative durations and a negative limit
// are rejected; zero values mean "disabled" (or, for SweepInterval, the
// default). The sweep interval is clamped to Expire when expiration is
// enabled so a sweep never lags the expiry window by more than one tick.
func New[K comparable, V any](cfg Config[K, V]) (*ExpiringStore[K, V], error) {
	if cfg.Expire < 0 {
		return nil, ErrNegativeExpire
	}
	if cfg.SweepInterval < 0 {
		return nil, ErrNegativeSweepInterval
	}
	if cfg.Limit < 0 {
		return nil, ErrNegativeLimit
	}

	interval := cfg.SweepInterval
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if cfg.Expire > 0 && interval > cfg.Expire {
		interval = cfg.Expire
	}

	return &ExpiringStore[K, V]{
		data:          make(map[K]V),
		lastUsed:      make(map[K]int64),
		expire:        cfg.Expire,
		sweepInterval: interval,
		limit:         cfg.Limit,
		onEvict:       cfg.OnEvict,
	}, nil
}

// Set inserts or overwrites an entry and returns the store for chaining.
// While expiration is enabled the entry's last-used stamp is refreshed and
// the sweeper is started if this populated an idle store.
func (s *ExpiringStore[K, V]) Set(key K, value V) *ExpiringStore[K, V] {
	s.mu.Lock()
	if _, exists := s.data[key]; !exists {
		s.order = append(s.order, key)
		s.stats.added++
	}
	s.data[key] = value
	if s.expire > 0 {
		s.lastUsed[key] = now().UnixMilli()
	}
	evicted := s.evictOverLimitLocked()
	s.maybeStartSweepLocked()
	s.mu.Unlock()

	s.notifyEvicted(evicted)
	return s
}

// Get returns the stored value for key. While expiration is enabled a hit
// refreshes the entry's last-used stamp: a read resets the eviction clock.
func (s *ExpiringStore[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	if s.expire > 0 {
		s.lastUsed[key] = now().UnixMilli()
	}
	return v, true
}

// Has reports membership without touching the last-used stamp.
func (s *ExpiringStore[K, V]) Has(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Delete removes key from the store and reports whether anything was
// removed. Deleting the last entry stops the sweeper.
func (s *ExpiringStore[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}
	s.deleteLocked(key)
	s.stats.removed++
	return true
}

// Clear stops the sweeper and empties the store.
func (s *ExpiringStore[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopSweepLocked()
	s.data = make(map[K]V)
	s.lastUsed = make(map[K]int64)
	s.order = nil
}

// Close stops the sweeper and waits for its goroutine to exit. The store
// remains usable afterwards; a later Set may start a new sweeper.
func (s *ExpiringStore[K, V]) Close() {
	s.mu.Lock()
	s.stopSweepLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

// Len returns the number of entries currently stored.
func (s *ExpiringStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// SetExpire changes the idle expiration window at runtime and re-derives
// whether the sweeper should run: enabled and non-empty (re)starts it with
// the new configuration, a non-positive value stops it.
func (s *ExpiringStore[K, V]) SetExpire(d time.Duration) *ExpiringStore[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.expire = d
	s.restartSweepLocked()
	return s
}

// SetSweepInterval changes the sweep period at runtime, restarting a running
// sweeper with the new period. A non-positive value stops the sweeper.
func (s *ExpiringStore[K, V]) SetSweepInterval(d time.Duration) *ExpiringStore[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.sweepInterval = d
	s.restartSweepLocked()
	return s
}

// Entries yields the (key, value) pairs in insertion order. The traversal is
// restartable: each call reflects the contents at that moment. Pairs are
// snapshotted before yielding so callbacks may freely mutate the store.
func (s *ExpiringStore[K, V]) Entries() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range s.snapshot() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys yields the keys in insertion order.
func (s *ExpiringStore[K, V]) Keys() iter.Seq[K] { return Keys[K, V](s) }

// Values yields the values in insertion order.
func (s *ExpiringStore[K, V]) Values() iter.Seq[V] { return Values[K, V](s) }

// Every reports whether pred holds for all entries.
func (s *ExpiringStore[K, V]) Every(pred func(K, V) bool) bool { return Every[K, V](s, pred) }

// Some reports whether pred holds for at least one entry.
func (s *ExpiringStore[K, V]) Some(pred func(K, V) bool) bool { return Some[K, V](s, pred) }

// Find returns the first value in insertion order satisfying pred.
func (s *ExpiringStore[K, V]) Find(pred func(V) bool) (V, bool) { return Find[K, V](s, pred) }

// Filter returns the values satisfying pred, preserving insertion order.
func (s *ExpiringStore[K, V]) Filter(pred func(V) bool) []V { return Filter[K, V](s, pred) }

// Reduce left-folds combine over the values in insertion order.
func (s *ExpiringStore[K, V]) Reduce(combine func(V, V) V, initial V) V {
	return Reduce[K, V](s, combine, initial)
}

// First returns the value of the oldest-inserted entry.
func (s *ExpiringStore[K, V]) First() (V, bool) { return First[K, V](s) }

// ToSlice materializes the values in insertion order.
func (s *ExpiringStore[K, V]) ToSlice() []V { return ToSlice[K, V](s) }

// ForEach applies visit to each (value, key) pair for side effects.
func (s *ExpiringStore[K, V]) ForEach(visit func(V, K)) { ForEach[K, V](s, visit) }

// MarshalJSON encodes the store as its ordered value array.
func (s *ExpiringStore[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToSlice())
}

func (s *ExpiringStore[K, V]) snapshot() []entry[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entry[K, V], 0, len(s.order))
	for _, k := range s.order {
		out = append(out, entry[K, V]{key: k, value: s.data[k]})
	}
	return out
}

// deleteLocked is the single removal path shared by Delete, limit eviction
// and the sweeper, so the empty-store sweeper shutdown applies uniformly.
func (s *ExpiringStore[K, V]) deleteLocked(key K) {
	delete(s.data, key)
	delete(s.lastUsed, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.data) == 0 {
		s.stopSweepLocked()
	}
}

// evictOverLimitLocked trims the store back under the configured limit,
// oldest entry first, and returns what was removed.
func (s *ExpiringStore[K, V]) evictOverLimitLocked() []entry[K, V] {
	if s.limit <= 0 {
		return nil
	}
	var out []entry[K, V]
	for len(s.data) > s.limit {
		victim, ok := s.oldestLocked()
		if !ok {
			break
		}
		out = append(out, entry[K, V]{key: victim, value: s.data[victim]})
		s.deleteLocked(victim)
		s.stats.evicted++
	}
	return out
}

// oldestLocked picks the entry with the earliest last-used stamp. Entries
// that were never stamped (inserted while expiration was off) predate any
// stamped activity and are considered oldest, in insertion order.
func (s *ExpiringStore[K, V]) oldestLocked() (K, bool) {
	for _, k := range s.order {
		if _, stamped := s.lastUsed[k]; !stamped {
			return k, true
		}
	}
	var victim K
	var victimStamp int64
	found := false
	for _, k := range s.order {
		ts := s.lastUsed[k]
		if !found || ts < victimStamp {
			victim, victimStamp, found = k, ts, true
		}
	}
	return victim, found
}

func (s *ExpiringStore[K, V]) notifyEvicted(evicted []entry[K, V]) {
	if s.onEvict == nil {
		return
	}
	for _, e := range evicted {
		s.onEvict(e.key, e.value)
	}
}
