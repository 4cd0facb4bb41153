// Package scheduler drives a room's two independent periodic loops: the
// 60Hz simulation tick and the 10Hz snapshot broadcast (spec.md §4.H).
// Grounded on the teacher's fixed-tick RunSimulation loop, split into two
// tickers so the snapshot cadence has its own timer as the spec requires.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Scheduler owns the two tickers for one room. Pause stops both without
// tearing down the goroutines; Stop cancels them for good.
type Scheduler struct {
	tickInterval     time.Duration
	snapshotInterval time.Duration

	onTick     func(ctx context.Context)
	onSnapshot func(ctx context.Context)

	mu      sync.Mutex
	paused  bool
	cancel  context.CancelFunc
	stopped bool
}

// New builds a Scheduler with the given callbacks; it does not start
// running until Start is called.
func New(tickInterval, snapshotInterval time.Duration, onTick, onSnapshot func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		tickInterval:     tickInterval,
		snapshotInterval: snapshotInterval,
		onTick:           onTick,
		onSnapshot:       onSnapshot,
	}
}

// Start launches the tick and snapshot goroutines. ctx cancellation (or
// a later call to Stop) ends both.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.runLoop(ctx, s.tickInterval, s.onTick)
	go s.runLoop(ctx, s.snapshotInterval, s.onSnapshot)
}

func (s *Scheduler) runLoop(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.isPaused() {
				continue
			}
			fn(ctx)
		}
	}
}

func (s *Scheduler) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Pause suspends both loops without stopping their goroutines, so Resume
// is cheap (spec.md §4.I paused sub-state).
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume un-suspends both loops.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// Stop cancels both loops for good. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.cancel == nil {
		return
	}
	s.cancel()
	s.stopped = true
}
