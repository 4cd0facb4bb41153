package room

import (
	"context"
	"testing"

	"clashfront/server/internal/persistence"
	"clashfront/server/internal/sim"
)

func TestJoinRejectsThirdPlayer(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	if err := r.Join("guest", "Guest"); err != nil {
		t.Fatalf("second join should succeed: %v", err)
	}
	if err := r.Join("third", "Third"); err == nil {
		t.Fatal("third join should be rejected: room full")
	}
}

func TestJoinIsIdempotentForExistingMember(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	if err := r.Join("host", "Host"); err != nil {
		t.Fatalf("rejoin by existing member should be idempotent: %v", err)
	}
}

func TestStartRequiresAllReady(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	r.Join("guest", "Guest")
	r.Ready("host", true)
	if err := r.Start("host", false, ""); err == nil {
		t.Fatal("start should fail while guest is not ready")
	}
	r.Ready("guest", true)
	if err := r.Start("host", false, ""); err != nil {
		t.Fatalf("start should succeed once both ready: %v", err)
	}
	if r.Status() != sim.StatusPlaying {
		t.Fatalf("status = %v, want playing", r.Status())
	}
	r.sched.Stop()
}

func TestStartRejectsNonHost(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	r.Join("guest", "Guest")
	r.Ready("host", true)
	r.Ready("guest", true)
	if err := r.Start("guest", false, ""); err == nil {
		t.Fatal("non-host start should be rejected")
	}
}

func TestLeaveDuringPlayOpensGraceWindow(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	r.Join("guest", "Guest")
	r.Ready("host", true)
	r.Ready("guest", true)
	if err := r.Start("host", false, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.sched.Stop()

	r.Leave("guest", EngineHooks{})
	r.mu.Lock()
	m, ok := r.members["guest"]
	r.mu.Unlock()
	if !ok || !m.disconnected {
		t.Fatal("guest should remain a member in a disconnected/grace state")
	}
}

func TestHostPromotionOnLeaveBeforeStart(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	r.Join("guest", "Guest")
	r.Leave("host", EngineHooks{})
	if r.hostID != "guest" {
		t.Fatalf("hostID = %q, want guest promoted", r.hostID)
	}
}

func TestRegistryRemovesEmptiedRoom(t *testing.T) {
	reg := NewRegistry(nil, nil)
	r := reg.Create("host", "Host", sim.DifficultyNormal, "seed")
	reg.Leave(r.ID, "host")
	if _, ok := reg.Get(r.ID); ok {
		t.Fatal("emptied room should be removed from the registry")
	}
}

func TestRegistryPersistsAndRemovesMetadata(t *testing.T) {
	store := persistence.NewInMemoryStore()
	reg := NewRegistry(nil, nil)
	reg.SetStore(store)

	r := reg.Create("host", "Host", sim.DifficultyNormal, "seed")
	meta, ok, err := store.Get(context.Background(), r.ID)
	if err != nil || !ok {
		t.Fatalf("Create should persist metadata: ok=%v err=%v", ok, err)
	}
	if meta.HostID != "host" || meta.Status != string(sim.StatusWaiting) {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	r.Join("guest", "Guest")
	meta, _, _ = store.Get(context.Background(), r.ID)
	if meta.PlayerIDs == "" {
		t.Fatal("Join should persist the updated member list")
	}

	reg.Leave(r.ID, "guest")
	reg.Leave(r.ID, "host")
	if _, ok, _ := store.Get(context.Background(), r.ID); ok {
		t.Fatal("emptying a room should delete its metadata")
	}
}

func TestRestoreMetadataRecreatesWaitingRoomsOnly(t *testing.T) {
	store := persistence.NewInMemoryStore()
	store.Save(context.Background(), persistence.RoomMetadata{
		RoomID: "waiting-room", Seed: "s1", Difficulty: string(sim.DifficultyNormal),
		Status: string(sim.StatusWaiting), HostID: "host1", PlayerIDs: "host1,guest1",
	})
	store.Save(context.Background(), persistence.RoomMetadata{
		RoomID: "live-room", Seed: "s2", Difficulty: string(sim.DifficultyNormal),
		Status: string(sim.StatusPlaying), HostID: "host2", PlayerIDs: "host2,guest2",
	})

	reg := NewRegistry(nil, nil)
	reg.SetStore(store)
	if err := reg.RestoreMetadata(context.Background()); err != nil {
		t.Fatalf("RestoreMetadata: %v", err)
	}

	if _, ok := reg.Get("waiting-room"); !ok {
		t.Fatal("waiting room should be recreated")
	}
	if _, ok := reg.Get("live-room"); ok {
		t.Fatal("a room that had already started should not be recreated")
	}
	if _, ok, _ := store.Get(context.Background(), "live-room"); ok {
		t.Fatal("unrecoverable metadata should be discarded")
	}
}

func TestPauseOnAllDisconnectedAndResumeOnRejoin(t *testing.T) {
	r := New("r1", "host", "Host", sim.DifficultyNormal, "seed", nil, nil)
	r.Join("guest", "Guest")
	r.Ready("host", true)
	r.Ready("guest", true)
	if err := r.Start("host", false, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.sched.Stop()

	r.Leave("host", EngineHooks{})
	r.Leave("guest", EngineHooks{})
	if r.Status() != sim.StatusPaused {
		t.Fatalf("status = %v, want paused once every member disconnects", r.Status())
	}

	if err := r.Join("host", "Host"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if r.Status() != sim.StatusPlaying {
		t.Fatalf("status = %v, want playing again after a member rejoins", r.Status())
	}
}
