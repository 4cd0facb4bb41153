package sim

import (
	"context"
	"testing"
)

func newAITestEngine(t *testing.T) *Engine {
	t.Helper()
	state := NewGameState("ai-test-seed", DifficultyNormal)
	state.AddAI("ai", "AI", "#555")
	state.AddPlayer("guest", "Guest", TeamGuest, "#0000ff")
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return NewEngine(state, nil)
}

func TestAIBuildsBarracksOnceAffordable(t *testing.T) {
	e := newAITestEngine(t)
	p := e.State().Players["ai"]
	p.Res.Gold = 500
	p.Res.Wood = 500

	e.aiExpandEconomy("ai")

	if e.aiCountComplete("ai", BuildingBarracks) != 0 {
		t.Fatal("a freshly placed barracks should not already be complete")
	}
	found := false
	for _, b := range e.State().Buildings {
		if b.Owner == "ai" && b.Variant == BuildingBarracks {
			found = true
		}
	}
	if !found {
		t.Fatal("expected aiExpandEconomy to place a barracks")
	}
}

func TestAIProducesWorkerUntilTarget(t *testing.T) {
	e := newAITestEngine(t)
	p := e.State().Players["ai"]
	p.Res.Gold = 500
	p.Res.Wood = 500
	p.Res.MaxSupply = 50

	ctx := context.Background()
	base := e.nearestOwnedBase("ai", 0, 0)
	if base == nil {
		t.Fatal("expected the AI's starting base to exist")
	}
	e.aiProduce(ctx, "ai")

	if len(base.Queue) != 1 || base.Queue[0].Variant != UnitWorker {
		t.Fatalf("base.Queue = %+v, want one queued worker", base.Queue)
	}
}

func TestAIMassesIdleUnitsIntoAttack(t *testing.T) {
	e := newAITestEngine(t)
	s := e.State()

	for i := 0; i < aiAttackGroupSize; i++ {
		u := &Unit{ID: s.nextID("unit"), Owner: "ai", X: 0, Y: 0, Variant: UnitSoldier, State: CommandIdle}
		applyUnitBaseline(u)
		s.Units[u.ID] = u
	}

	e.aiAttack("ai")

	for id, u := range s.Units {
		if u.Owner != "ai" || !isCombatUnit(u.Variant) {
			continue
		}
		if u.State != CommandAttackMove {
			t.Fatalf("unit %s.State = %v, want %v", id, u.State, CommandAttackMove)
		}
	}
}

func TestAIDoesNotAttackBelowGroupThreshold(t *testing.T) {
	e := newAITestEngine(t)
	s := e.State()

	u := &Unit{ID: s.nextID("unit"), Owner: "ai", X: 0, Y: 0, Variant: UnitSoldier, State: CommandIdle}
	applyUnitBaseline(u)
	s.Units[u.ID] = u

	e.aiAttack("ai")

	if u.State != CommandIdle {
		t.Fatalf("lone idle unit should stay idle below the group threshold, got %v", u.State)
	}
}

func TestAdvanceAISkipsNonAIPlayers(t *testing.T) {
	e := newTestEngine(t)
	before := len(e.State().Buildings)
	e.advanceAI(context.Background())
	if len(e.State().Buildings) != before {
		t.Fatalf("advanceAI should not act on a room with no AI player, buildings changed from %d to %d", before, len(e.State().Buildings))
	}
}
