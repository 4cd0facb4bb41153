package snapshot

import (
	"testing"

	"clashfront/server/internal/sim"
)

func newSnapshotState(t *testing.T) *sim.GameState {
	t.Helper()
	s := sim.NewGameState("snapshot-seed", sim.DifficultyNormal)
	s.AddPlayer("host", "Host", sim.TeamHost, "#fff")
	s.AddPlayer("guest", "Guest", sim.TeamGuest, "#000")
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func TestBuildFiltersUndiscoveredEnemies(t *testing.T) {
	s := newSnapshotState(t)
	snap := Build(s, "host", 0, Options{})

	for _, u := range snap.Units {
		if u.Owner != "host" {
			t.Fatalf("guest unit %s should not be visible before host discovers it", u.ID)
		}
	}
}

func TestBuildIncludeAllShowsEverything(t *testing.T) {
	s := newSnapshotState(t)
	snap := Build(s, "host", 0, Options{IncludeAll: true})

	if len(snap.Units) != len(s.Units) {
		t.Fatalf("IncludeAll should return every unit, got %d want %d", len(snap.Units), len(s.Units))
	}
}

func TestBuildAlwaysIncludesOwnEntities(t *testing.T) {
	s := newSnapshotState(t)
	snap := Build(s, "host", 0, Options{})

	var hostUnitCount int
	for _, u := range s.Units {
		if u.Owner == "host" {
			hostUnitCount++
		}
	}
	var seen int
	for _, u := range snap.Units {
		if u.Owner == "host" {
			seen++
		}
	}
	if seen != hostUnitCount {
		t.Fatalf("expected all %d host units visible, got %d", hostUnitCount, seen)
	}
}
