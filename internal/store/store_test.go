package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// freezeClock pins the package clock for the duration of a test and returns
// a func that advances it. The clock is guarded so a live sweeper goroutine
// may read it concurrently.
func freezeClock(t *testing.T) func(time.Duration) {
	t.Helper()
	var mu sync.Mutex
	base := time.Now()
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return base
	}
	t.Cleanup(func() { now = time.Now })
	return func(d time.Duration) {
		mu.Lock()
		base = base.Add(d)
		mu.Unlock()
	}
}

func TestSetGetHas(t *testing.T) {
	s, err := New(Config[string, int]{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Set("a", 1)

	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got ok=%v v=%v", ok, v)
	}
	if !s.Has("a") {
		t.Fatalf("expected Has to be true")
	}
	if s.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", s.Len())
	}
}

func TestGet_Missing(t *testing.T) {
	s, _ := New(Config[string, string]{})
	if v, ok := s.Get("nope"); ok || v != "" {
		t.Fatalf("expected miss with zero value, got ok=%v v=%q", ok, v)
	}
	if s.Has("nope") {
		t.Fatalf("expected Has=false for missing key")
	}
}

func TestSet_OverwriteKeepsSingleEntry(t *testing.T) {
	s, _ := New(Config[string, int]{})
	s.Set("a", 1).Set("a", 2)

	if s.Len() != 1 {
		t.Fatalf("expected Len=1 after overwrite, got %d", s.Len())
	}
	if v, _ := s.Get("a"); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
}

func TestDelete(t *testing.T) {
	s, _ := New(Config[int, int]{})
	s.Set(1, 10).Set(2, 20)

	if !s.Delete(1) {
		t.Fatalf("expected Delete to report removal")
	}
	if s.Delete(1) {
		t.Fatalf("expected Delete of missing key to report false")
	}
	if s.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", s.Len())
	}
}

func TestClear(t *testing.T) {
	s, _ := New(Config[string, int]{})
	s.Set("a", 1).Set("b", 2)
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected Len=0 after Clear, got %d", s.Len())
	}
	if s.Has("a") {
		t.Fatalf("expected store to be empty after Clear")
	}
}

func TestNew_RejectsNegativeConfig(t *testing.T) {
	if _, err := New(Config[string, int]{Expire: -time.Second}); !errors.Is(err, ErrNegativeExpire) {
		t.Fatalf("expected ErrNegativeExpire, got %v", err)
	}
	if _, err := New(Config[string, int]{SweepInterval: -time.Second}); !errors.Is(err, ErrNegativeSweepInterval) {
		t.Fatalf("expected ErrNegativeSweepInterval, got %v", err)
	}
	if _, err := New(Config[string, int]{Limit: -1}); !errors.Is(err, ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}
}

func TestNew_ClampsSweepIntervalToExpire(t *testing.T) {
	s, err := New(Config[string, int]{Expire: 50 * time.Millisecond, SweepInterval: time.Minute})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.sweepInterval != 50*time.Millisecond {
		t.Fatalf("expected interval clamped to expire, got %s", s.sweepInterval)
	}

	s, _ = New(Config[string, int]{Expire: time.Minute})
	if s.sweepInterval != DefaultSweepInterval {
		t.Fatalf("expected default interval, got %s", s.sweepInterval)
	}
}

func TestDisabledExpire_NeverStamps(t *testing.T) {
	s, _ := New(Config[string, int]{})
	s.Set("a", 1)
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected hit")
	}

	s.mu.RLock()
	stamps := len(s.lastUsed)
	s.mu.RUnlock()
	if stamps != 0 {
		t.Fatalf("expected no last-used stamps while expiration is disabled, got %d", stamps)
	}
	if s.Sweeping() {
		t.Fatalf("expected no sweeper while expiration is disabled")
	}
}

func TestLimit_EvictsOldestByLastUsed(t *testing.T) {
	advance := freezeClock(t)

	var evicted []string
	s, _ := New(Config[string, int]{
		Expire: time.Minute,
		Limit:  2,
		OnEvict: func(key string, _ int) {
			evicted = append(evicted, key)
		},
	})
	defer s.Close()

	s.Set("a", 1)
	advance(time.Millisecond)
	s.Set("b", 2)

	// Touch a so b becomes the oldest.
	advance(time.Millisecond)
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected a to exist")
	}

	advance(time.Millisecond)
	s.Set("c", 3)

	if s.Has("b") {
		t.Fatalf("expected b to be evicted as oldest")
	}
	if !s.Has("a") || !s.Has("c") {
		t.Fatalf("expected a and c to remain")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("expected OnEvict for b, got %v", evicted)
	}
}

func TestLimit_WithoutStampsEvictsInsertionOrder(t *testing.T) {
	s, _ := New(Config[string, int]{Limit: 2})
	s.Set("a", 1).Set("b", 2).Set("c", 3)

	if s.Has("a") {
		t.Fatalf("expected a (first inserted) to be evicted")
	}
	if !s.Has("b") || !s.Has("c") {
		t.Fatalf("expected b and c to remain")
	}
}

func TestStats(t *testing.T) {
	s, _ := New(Config[string, int]{Limit: 1})
	s.Set("a", 1)
	s.Set("b", 2) // evicts a
	s.Delete("b")

	st := s.Stats()
	if st.Added != 2 || st.Evicted != 1 || st.Removed != 1 || st.Size != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
