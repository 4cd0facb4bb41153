// Package ratelimit implements the strict sliding-window counters the
// action validator uses. It is deliberately not built on
// golang.org/x/time/rate: a token bucket allows a burst up to its
// capacity at any instant, while a sliding window rejects the instant the
// count within the trailing interval exceeds the limit — the two disagree
// at the boundary. The anti-cheat action-rate rule does not use these
// windows; internal/anticheat keeps its own per-player counter.
package ratelimit

import (
	"sync"
	"time"
)

// Window is a single sliding-window counter over one duration.
type Window struct {
	limit    int
	interval time.Duration

	mu     sync.Mutex
	events []time.Time
}

// NewWindow returns a counter that permits at most limit events within
// interval.
func NewWindow(limit int, interval time.Duration) *Window {
	return &Window{limit: limit, interval: interval}
}

// Allow records an event at now and reports whether it stayed within the
// limit. Rejected events are NOT recorded, so a client cannot inflate its
// own history by hammering the limiter.
func (w *Window) Allow(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(now)
	if len(w.events) >= w.limit {
		return false
	}
	w.events = append(w.events, now)
	return true
}

// Count reports how many events currently sit within the window.
func (w *Window) Count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(now)
	return len(w.events)
}

func (w *Window) evict(now time.Time) {
	cutoff := now.Add(-w.interval)
	i := 0
	for ; i < len(w.events); i++ {
		if w.events[i].After(cutoff) {
			break
		}
	}
	w.events = w.events[i:]
}

// PlayerLimiter bundles the two windows spec.md's rate-limit rule
// requires per player: a short burst window and a longer sustained one.
// Both must pass for an action to be admitted.
type PlayerLimiter struct {
	Burst     *Window
	Sustained *Window
}

// NewPlayerLimiter returns the standard 10-per-second / 300-per-minute
// pair.
func NewPlayerLimiter() *PlayerLimiter {
	return &PlayerLimiter{
		Burst:     NewWindow(10, time.Second),
		Sustained: NewWindow(300, time.Minute),
	}
}

// Allow reports whether an action submitted at now is within both
// windows. It short-circuits on the burst window so a caller already
// over budget doesn't consume a sustained-window slot for nothing.
func (p *PlayerLimiter) Allow(now time.Time) bool {
	if !p.Burst.Allow(now) {
		return false
	}
	if !p.Sustained.Allow(now) {
		return false
	}
	return true
}

// Registry tracks one PlayerLimiter per player id, created lazily.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*PlayerLimiter
}

func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*PlayerLimiter)}
}

func (r *Registry) Allow(playerID string, now time.Time) bool {
	return r.Get(playerID).Allow(now)
}

// Get returns playerID's limiter, creating it lazily. Callers that need
// to pass the limiter itself into validate.Validate (rather than asking
// the registry to decide) use this instead of Allow.
func (r *Registry) Get(playerID string) *PlayerLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[playerID]
	if !ok {
		l = NewPlayerLimiter()
		r.limiters[playerID] = l
	}
	return l
}

// Remove drops a player's limiter, called when they leave a room.
func (r *Registry) Remove(playerID string) {
	r.mu.Lock()
	delete(r.limiters, playerID)
	r.mu.Unlock()
}
