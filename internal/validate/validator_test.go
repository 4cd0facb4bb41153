package validate

import (
	"testing"
	"time"

	"clashfront/server/internal/ratelimit"
	"clashfront/server/internal/sim"
)

func newState(t *testing.T) *sim.GameState {
	t.Helper()
	s := sim.NewGameState("validator-seed", sim.DifficultyNormal)
	s.AddPlayer("host", "Host", sim.TeamHost, "#fff")
	s.AddPlayer("guest", "Guest", sim.TeamGuest, "#000")
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func TestResourceLegalityAcceptsThenRejectsSecondIdenticalOrder(t *testing.T) {
	s := newState(t)
	p := s.Players["host"]
	p.Res.Gold = 50
	p.Res.Wood = 0
	p.Res.MaxSupply = 10

	action := sim.Action{Type: sim.ActionProduce, BuildingID: firstBase(s, "host").ID, UnitVariant: sim.UnitWorker}
	limiter := ratelimit.NewPlayerLimiter()
	now := time.Now()

	result := Validate(s, limiter, "host", action, now, now)
	if !result.OK {
		t.Fatalf("first order should be accepted, got reason %q", result.Reason)
	}
	// Simulate the engine having applied the debit the validator assumed.
	p.Res.Gold -= sim.UnitCatalog[sim.UnitWorker].Cost.Gold
	p.Res.Supply += sim.UnitCatalog[sim.UnitWorker].Cost.Supply

	result2 := Validate(s, limiter, "host", action, now, now)
	if result2.OK || result2.Reason != "insufficient resources" {
		t.Fatalf("second identical order should be rejected as insufficient resources, got %+v", result2)
	}
}

func TestBuildPlacementRejectsCollision(t *testing.T) {
	s := newState(t)
	p := s.Players["host"]
	p.Res.Gold, p.Res.Wood = 1000, 1000

	base := firstBase(s, "host")
	action := sim.Action{Type: sim.ActionBuild, BuildingVariant: sim.BuildingWall, TargetX: base.X, TargetY: base.Y}
	limiter := ratelimit.NewPlayerLimiter()
	now := time.Now()

	result := Validate(s, limiter, "host", action, now, now)
	if result.OK {
		t.Fatal("build directly on top of the base should collide")
	}
	if result.Reason != "build site collides with an existing building" {
		t.Fatalf("reason = %q", result.Reason)
	}
}

func TestOwnershipRejectsForeignUnit(t *testing.T) {
	s := newState(t)
	var guestUnit *sim.Unit
	for _, u := range s.Units {
		if u.Owner == "guest" {
			guestUnit = u
			break
		}
	}
	action := sim.Action{Type: sim.ActionMove, UnitIDs: []string{guestUnit.ID}, TargetX: 100, TargetY: 100}
	limiter := ratelimit.NewPlayerLimiter()
	now := time.Now()

	result := Validate(s, limiter, "host", action, now, now)
	if result.OK || result.Reason != "unit not owned by sender" {
		t.Fatalf("expected ownership rejection, got %+v", result)
	}
}

func TestRateLimitRejectsBurstOverBudget(t *testing.T) {
	s := newState(t)
	limiter := ratelimit.NewPlayerLimiter()
	now := time.Now()
	action := sim.Action{Type: sim.ActionHoldPosition, UnitIDs: []string{firstUnit(s, "host").ID}}

	for i := 0; i < 10; i++ {
		if r := Validate(s, limiter, "host", action, now, now); !r.OK {
			t.Fatalf("action %d should be within burst budget, got %q", i, r.Reason)
		}
	}
	if r := Validate(s, limiter, "host", action, now, now); r.OK || r.Reason != "rate limit exceeded" {
		t.Fatalf("11th action should be rate limited, got %+v", r)
	}
}

func TestUpgradeCapRejectsAboveMax(t *testing.T) {
	s := newState(t)
	p := s.Players["host"]
	p.Upg.Range = 2
	limiter := ratelimit.NewPlayerLimiter()
	now := time.Now()

	result := Validate(s, limiter, "host", sim.Action{Type: sim.ActionUpgrade, UpgradeKind: sim.UpgradeRange}, now, now)
	if result.OK || result.Reason != "range upgrade at cap" {
		t.Fatalf("expected upgrade cap rejection, got %+v", result)
	}
}

func firstBase(s *sim.GameState, owner string) *sim.Building {
	for _, b := range s.Buildings {
		if b.Owner == owner && b.Variant == sim.BuildingBase {
			return b
		}
	}
	return nil
}

func firstUnit(s *sim.GameState, owner string) *sim.Unit {
	for _, u := range s.Units {
		if u.Owner == owner {
			return u
		}
	}
	return nil
}
