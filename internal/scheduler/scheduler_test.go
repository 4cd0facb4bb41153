package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsBothLoops(t *testing.T) {
	var ticks, snapshots int64
	s := New(5*time.Millisecond, 10*time.Millisecond,
		func(ctx context.Context) { atomic.AddInt64(&ticks, 1) },
		func(ctx context.Context) { atomic.AddInt64(&snapshots, 1) },
	)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	cancel()
	s.Stop()

	if atomic.LoadInt64(&ticks) == 0 {
		t.Fatal("expected tick loop to have fired")
	}
	if atomic.LoadInt64(&snapshots) == 0 {
		t.Fatal("expected snapshot loop to have fired")
	}
}

func TestSchedulerPauseStopsCallbacks(t *testing.T) {
	var ticks int64
	s := New(5*time.Millisecond, 5*time.Millisecond,
		func(ctx context.Context) { atomic.AddInt64(&ticks, 1) },
		func(ctx context.Context) {},
	)
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Pause()
	afterPause := atomic.LoadInt64(&ticks)
	time.Sleep(20 * time.Millisecond)
	stillPaused := atomic.LoadInt64(&ticks)
	s.Stop()

	if stillPaused != afterPause {
		t.Fatalf("ticks advanced while paused: %d -> %d", afterPause, stillPaused)
	}
}
