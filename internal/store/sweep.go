package store

import "time"

// Sweeping reports whether a background sweeper goroutine is currently
// running for this store.
func (s *ExpiringStore[K, V]) Sweeping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sweepStop != nil
}

// maybeStartSweepLocked starts the sweeper when expiration is enabled, the
// period is non-zero, the store is non-empty and no sweeper is running yet.
// The effective period is re-derived on every start so runtime setters can
// never leave the sweep period longer than the expiry window.
func (s *ExpiringStore[K, V]) maybeStartSweepLocked() {
	if s.sweepStop != nil || s.expire <= 0 || s.sweepInterval <= 0 || len(s.data) == 0 {
		return
	}

	period := s.sweepInterval
	if period > s.expire {
		period = s.expire
	}

	stop := make(chan struct{})
	s.sweepStop = stop
	s.wg.Add(1)
	go s.sweepLoop(period, stop)
}

// stopSweepLocked asks a running sweeper to exit. It does not wait: the
// sweeper itself reaches this through deleteLocked when it empties the
// store, and waiting there would deadlock.
func (s *ExpiringStore[K, V]) stopSweepLocked() {
	if s.sweepStop == nil {
		return
	}
	close(s.sweepStop)
	s.sweepStop = nil
}

// restartSweepLocked re-derives whether a sweeper should run after a
// configuration change. At most one sweeper exists at any time: the old one
// is cancelled before a new one starts.
func (s *ExpiringStore[K, V]) restartSweepLocked() {
	s.stopSweepLocked()
	s.maybeStartSweepLocked()
}

func (s *ExpiringStore[K, V]) sweepLoop(period time.Duration, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep(stop)
		}
	}
}

// sweep removes every entry whose idle time strictly exceeds the expiration
// window. Expired keys are collected first and deleted after, so mutating
// the maps never races the scan. A tick that raced a stop or restart is
// recognized by its stale stop channel and ignored.
func (s *ExpiringStore[K, V]) sweep(stop chan struct{}) {
	s.mu.Lock()

	if s.sweepStop != stop || s.expire <= 0 {
		s.mu.Unlock()
		return
	}

	nowMs := now().UnixMilli()
	expireMs := s.expire.Milliseconds()

	var stale []K
	for k, ts := range s.lastUsed {
		if nowMs-ts > expireMs {
			stale = append(stale, k)
		}
	}

	expired := make([]entry[K, V], 0, len(stale))
	for _, k := range stale {
		expired = append(expired, entry[K, V]{key: k, value: s.data[k]})
		s.deleteLocked(k)
		s.stats.expired++
	}
	s.mu.Unlock()

	s.notifyEvicted(expired)
}
