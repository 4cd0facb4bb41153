package ratelimit

import (
	"testing"
	"time"
)

func TestWindowRejectsOverLimit(t *testing.T) {
	w := NewWindow(2, time.Second)
	base := time.Now()
	if !w.Allow(base) {
		t.Fatal("first event should be allowed")
	}
	if !w.Allow(base.Add(10 * time.Millisecond)) {
		t.Fatal("second event should be allowed")
	}
	if w.Allow(base.Add(20 * time.Millisecond)) {
		t.Fatal("third event within the window should be rejected")
	}
}

func TestWindowEvictsExpiredEvents(t *testing.T) {
	w := NewWindow(1, 100*time.Millisecond)
	base := time.Now()
	if !w.Allow(base) {
		t.Fatal("first event should be allowed")
	}
	if w.Allow(base.Add(50 * time.Millisecond)) {
		t.Fatal("second event within window should be rejected")
	}
	if !w.Allow(base.Add(150 * time.Millisecond)) {
		t.Fatal("event after window elapses should be allowed")
	}
}

func TestRejectedEventsAreNotRecorded(t *testing.T) {
	w := NewWindow(1, time.Second)
	base := time.Now()
	w.Allow(base)
	w.Allow(base.Add(time.Millisecond)) // rejected
	if got := w.Count(base.Add(time.Millisecond)); got != 1 {
		t.Fatalf("Count = %d, want 1 (rejected event must not be recorded)", got)
	}
}

func TestPlayerLimiterRequiresBothWindows(t *testing.T) {
	p := NewPlayerLimiter()
	base := time.Now()
	for i := 0; i < 10; i++ {
		if !p.Allow(base.Add(time.Duration(i) * time.Millisecond)) {
			t.Fatalf("event %d should be within burst budget", i)
		}
	}
	if p.Allow(base.Add(11 * time.Millisecond)) {
		t.Fatal("11th event within one second should exceed burst budget")
	}
}

func TestRegistryIsolatesPlayers(t *testing.T) {
	r := NewRegistry()
	base := time.Now()
	for i := 0; i < 10; i++ {
		r.Allow("p1", base)
	}
	if !r.Allow("p2", base) {
		t.Fatal("a different player's limiter must be independent")
	}
}
