package persistence

import (
	"context"
	"testing"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	m := RoomMetadata{RoomID: "r1", Seed: "abc", Difficulty: "normal", Status: "waiting", HostID: "host"}

	if err := s.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Get(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("Get: %v, ok=%v", err, ok)
	}
	if got.Seed != "abc" {
		t.Fatalf("Seed = %q, want abc", got.Seed)
	}
}

func TestInMemoryStoreDelete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	s.Save(ctx, RoomMetadata{RoomID: "r1"})
	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "r1"); ok {
		t.Fatal("expected room to be gone after Delete")
	}
}

func TestInMemoryStoreList(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	s.Save(ctx, RoomMetadata{RoomID: "r1"})
	s.Save(ctx, RoomMetadata{RoomID: "r2"})
	rows, err := s.List(ctx)
	if err != nil || len(rows) != 2 {
		t.Fatalf("List = %v, %v, want 2 rows", rows, err)
	}
}
