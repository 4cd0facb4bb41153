package spatial

import (
	"sort"
	"testing"
)

func TestQueryRadius(t *testing.T) {
	idx := New()
	idx.Insert("a", 100, 100)
	idx.Insert("b", 150, 100)
	idx.Insert("c", 500, 500)

	got := idx.QueryRadius(100, 100, 60)
	sort.Strings(got)
	want := []string{"a", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("QueryRadius = %v, want %v", got, want)
	}
}

func TestClearRemovesEntities(t *testing.T) {
	idx := New()
	idx.Insert("a", 0, 0)
	idx.Clear()
	if got := idx.QueryRadius(0, 0, 10); len(got) != 0 {
		t.Fatalf("expected empty index after Clear, got %v", got)
	}
}

func TestNearestPicksClosest(t *testing.T) {
	idx := New()
	idx.Insert("far", 100, 0)
	idx.Insert("near", 10, 0)

	id, ok := idx.Nearest(0, 0, 200, nil)
	if !ok || id != "near" {
		t.Fatalf("Nearest = %q, %v, want near", id, ok)
	}
}

func TestNearestRespectsFilter(t *testing.T) {
	idx := New()
	idx.Insert("near", 10, 0)
	idx.Insert("far", 100, 0)

	id, ok := idx.Nearest(0, 0, 200, func(id string) bool { return id != "near" })
	if !ok || id != "far" {
		t.Fatalf("Nearest with filter = %q, %v, want far", id, ok)
	}
}

func TestQueryRadiusAcrossCellBoundaries(t *testing.T) {
	idx := New()
	// Straddles a cell boundary at x=100 (cellSize=100).
	idx.Insert("edge", 99, 0)
	idx.Insert("edge2", 101, 0)

	got := idx.QueryRadius(100, 0, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 entities across boundary, got %v", got)
	}
}
