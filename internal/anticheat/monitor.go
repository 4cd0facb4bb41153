// Package anticheat implements the passive severity-graded observer:
// resource drift, stat-ratio, action-rate, and out-of-map checks. It
// never mutates sim.GameState — every method returns Events for the
// caller (the room manager) to log and act on.
package anticheat

import (
	"clashfront/server/internal/sim"
)

// Severity mirrors spec.md §4.E's two-tier grading.
type Severity string

const (
	SeveritySuspicious Severity = "suspicious"
	SeverityConfirmed  Severity = "confirmed"
)

// Rule names the invariant an Event flags.
type Rule string

const (
	RuleResourceDrift Rule = "resource_drift"
	RuleStatRatio     Rule = "stat_ratio"
	RuleActionRate    Rule = "action_rate"
	RuleOutOfMap      Rule = "out_of_map"
)

// Event is one observation, ready to be logged via logging/cheat.
type Event struct {
	PlayerID string
	Rule     Rule
	Severity Severity
	Detail   string
	Value    float64
	Expected float64
}

// CheckResourceDrift compares a client-asserted resource value against
// the server's authoritative value (spec.md §4.E: ±5 tolerated, >±50 is
// confirmed cheating). Returns nil if within tolerance.
func CheckResourceDrift(playerID string, field string, asserted, authoritative float64) *Event {
	drift := asserted - authoritative
	if drift < 0 {
		drift = -drift
	}
	switch {
	case drift <= 5:
		return nil
	case drift > 50:
		return &Event{PlayerID: playerID, Rule: RuleResourceDrift, Severity: SeverityConfirmed, Detail: field, Value: asserted, Expected: authoritative}
	default:
		return &Event{PlayerID: playerID, Rule: RuleResourceDrift, Severity: SeveritySuspicious, Detail: field, Value: asserted, Expected: authoritative}
	}
}

// CheckUnitStats flags a unit whose stats exceed the catalog baseline by
// more than the tolerated multiplier (spec.md §4.E: 1.5x hp/speed, 2x
// damage/range).
func CheckUnitStats(u *sim.Unit) []Event {
	stats, known := sim.UnitCatalog[u.Variant]
	if !known {
		return nil
	}
	var events []Event
	check := func(rule string, actual, baseline, maxRatio float64) {
		if baseline <= 0 {
			return
		}
		if actual > baseline*maxRatio {
			events = append(events, Event{
				PlayerID: u.Owner, Rule: RuleStatRatio, Severity: SeverityConfirmed,
				Detail: u.ID + ":" + rule, Value: actual, Expected: baseline,
			})
		}
	}
	check("hp", u.MaxHP, stats.MaxHP, 1.5)
	check("damage", u.AttackDamage, stats.AttackDamage, 2.0)
	check("range", u.AttackRange, stats.AttackRange, 2.0)
	check("speed", u.MoveSpeed, stats.MoveSpeed, 1.5)
	return events
}

// CheckOutOfMap flags any entity whose position falls outside the world
// bounds — always confirmed, since legitimate movement can never produce
// this (spec.md §4.E).
func CheckOutOfMap(playerID, entityID string, x, y float64) *Event {
	if x < 0 || y < 0 || x > sim.WorldPixelWidth || y > sim.WorldPixelHeight {
		return &Event{PlayerID: playerID, Rule: RuleOutOfMap, Severity: SeverityConfirmed, Detail: entityID, Value: x, Expected: y}
	}
	return nil
}

// ActionRateMonitor tracks a rolling per-minute action count independent
// of the enforcement-facing internal/ratelimit windows, so a player who
// stays just under the hard rate limit but is still anomalously active
// can be flagged without being blocked (spec.md §4.E: >30/min suspicious,
// >60/min confirmed).
type ActionRateMonitor struct {
	counts map[string]int
}

func NewActionRateMonitor() *ActionRateMonitor {
	return &ActionRateMonitor{counts: make(map[string]int)}
}

// RecordAndCheck increments the player's count for the current minute
// window and returns an Event if a threshold was crossed. The caller is
// responsible for calling ResetWindow once per minute.
func (m *ActionRateMonitor) RecordAndCheck(playerID string) *Event {
	m.counts[playerID]++
	n := m.counts[playerID]
	switch {
	case n > 60:
		return &Event{PlayerID: playerID, Rule: RuleActionRate, Severity: SeverityConfirmed, Value: float64(n), Expected: 60}
	case n > 30:
		return &Event{PlayerID: playerID, Rule: RuleActionRate, Severity: SeveritySuspicious, Value: float64(n), Expected: 30}
	default:
		return nil
	}
}

// ResetWindow clears every player's per-minute counter.
func (m *ActionRateMonitor) ResetWindow() {
	for k := range m.counts {
		delete(m.counts, k)
	}
}
