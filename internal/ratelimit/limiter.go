// Package ratelimit implements per-client sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most limit requests per identity within a sliding window.
// Timestamps are pruned lazily on access; identities idle for longer than the
// window are dropped during periodic inline cleanup.
//
// Safe for concurrent use. The per-identity timestamp slice is bounded by
// the limit, so Allow is O(limit).
type Limiter struct {
	mu          sync.Mutex
	clients     map[string][]time.Time
	limit       int
	window      time.Duration
	lastCleanup time.Time

	now func() time.Time // overridable for tests
}

// New creates a Limiter admitting limit requests per window per identity.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		clients:     make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether a request from identity is admitted.
// A timestamp is recorded only on admission; rejected requests do not
// consume budget.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	recent := pruneOlder(l.clients[identity], now.Add(-l.window))

	if len(recent) >= l.limit {
		l.clients[identity] = recent
		return false
	}

	l.clients[identity] = append(recent, now)
	return true
}

// maybeCleanup drops identities whose newest timestamp fell out of the
// window. Runs at most once per window to keep Allow cheap.
func (l *Limiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < l.window {
		return
	}
	cutoff := now.Add(-l.window)
	for id, stamps := range l.clients {
		if len(stamps) == 0 || stamps[len(stamps)-1].Before(cutoff) {
			delete(l.clients, id)
		}
	}
	l.lastCleanup = now
}

// pruneOlder returns the suffix of stamps newer than cutoff.
// Stamps are appended in order, so a linear scan for the first survivor
// suffices.
func pruneOlder(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return nil
}
