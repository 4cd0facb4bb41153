package anticheat

import (
	"testing"

	"clashfront/server/internal/sim"
)

func TestCheckResourceDriftToleratesSmallDrift(t *testing.T) {
	if evt := CheckResourceDrift("p1", "gold", 103, 100); evt != nil {
		t.Fatalf("drift of 3 should be tolerated, got %+v", evt)
	}
}

func TestCheckResourceDriftFlagsSuspicious(t *testing.T) {
	evt := CheckResourceDrift("p1", "gold", 120, 100)
	if evt == nil || evt.Severity != SeveritySuspicious {
		t.Fatalf("expected suspicious drift event, got %+v", evt)
	}
}

func TestCheckResourceDriftFlagsConfirmed(t *testing.T) {
	evt := CheckResourceDrift("p1", "gold", 200, 100)
	if evt == nil || evt.Severity != SeverityConfirmed {
		t.Fatalf("expected confirmed drift event, got %+v", evt)
	}
}

func TestCheckUnitStatsFlagsOversizedHP(t *testing.T) {
	u := &sim.Unit{ID: "u1", Owner: "p1", Variant: sim.UnitSoldier, MaxHP: 999, MoveSpeed: sim.UnitCatalog[sim.UnitSoldier].MoveSpeed, AttackDamage: sim.UnitCatalog[sim.UnitSoldier].AttackDamage, AttackRange: sim.UnitCatalog[sim.UnitSoldier].AttackRange}
	events := CheckUnitStats(u)
	if len(events) != 1 || events[0].Detail != "u1:hp" {
		t.Fatalf("expected a single hp stat-ratio event, got %+v", events)
	}
}

func TestCheckOutOfMapFlagsNegativePosition(t *testing.T) {
	evt := CheckOutOfMap("p1", "u1", -10, 50)
	if evt == nil || evt.Severity != SeverityConfirmed {
		t.Fatalf("expected confirmed out-of-map event, got %+v", evt)
	}
}

func TestActionRateMonitorThresholds(t *testing.T) {
	m := NewActionRateMonitor()
	var last *Event
	for i := 0; i < 61; i++ {
		last = m.RecordAndCheck("p1")
	}
	if last == nil || last.Severity != SeverityConfirmed {
		t.Fatalf("61st action in a minute should be confirmed, got %+v", last)
	}
	m.ResetWindow()
	if evt := m.RecordAndCheck("p1"); evt != nil {
		t.Fatalf("first action after reset should not trigger, got %+v", evt)
	}
}
