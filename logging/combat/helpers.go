// Package combat publishes structured events for damage, healing, and
// death — the events an anti-cheat audit trail or spectator tool would
// want, without coupling internal/sim to a concrete sink.
package combat

import (
	"context"

	"clashfront/server/logging"
)

const (
	EventDamageDealt    logging.EventType = "combat.damage_dealt"
	EventHealApplied    logging.EventType = "combat.heal_applied"
	EventUnitDied       logging.EventType = "combat.unit_died"
	EventBuildingDied   logging.EventType = "combat.building_died"
	EventProjectileHit  logging.EventType = "combat.projectile_hit"
)

type DamagePayload struct {
	Amount    float64 `json:"amount"`
	Weapon    string  `json:"weapon"`
	Splash    bool    `json:"splash,omitempty"`
	RemainingHP float64 `json:"remainingHp"`
}

type HealPayload struct {
	Amount float64 `json:"amount"`
}

type DeathPayload struct {
	Variant string `json:"variant"`
	Killer  string `json:"killer,omitempty"`
}

func publish(ctx context.Context, pub logging.Publisher, evt logging.EventType, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     evt,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func DamageDealt(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef, payload DamagePayload) {
	publish(ctx, pub, EventDamageDealt, tick, attacker, []logging.EntityRef{target}, logging.SeverityDebug, payload)
}

func HealApplied(ctx context.Context, pub logging.Publisher, tick uint64, healer, target logging.EntityRef, payload HealPayload) {
	publish(ctx, pub, EventHealApplied, tick, healer, []logging.EntityRef{target}, logging.SeverityDebug, payload)
}

func UnitDied(ctx context.Context, pub logging.Publisher, tick uint64, unit logging.EntityRef, payload DeathPayload) {
	publish(ctx, pub, EventUnitDied, tick, unit, nil, logging.SeverityInfo, payload)
}

func BuildingDied(ctx context.Context, pub logging.Publisher, tick uint64, building logging.EntityRef, payload DeathPayload) {
	publish(ctx, pub, EventBuildingDied, tick, building, nil, logging.SeverityInfo, payload)
}
