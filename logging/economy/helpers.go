// Package economy publishes structured events for resource and production
// bookkeeping: debits, credits, and production completion.
package economy

import (
	"context"

	"clashfront/server/logging"
)

const (
	// EventProduceAccepted is emitted when a produce action is accepted and
	// gold/wood/supply are reserved.
	EventProduceAccepted logging.EventType = "economy.produce_accepted"
	// EventProductionCompleted is emitted when a queued unit spawns.
	EventProductionCompleted logging.EventType = "economy.production_completed"
	// EventUpgradeApplied is emitted when a player's attack/defense/range
	// upgrade level increments.
	EventUpgradeApplied logging.EventType = "economy.upgrade_applied"
	// EventAIIncome is emitted when the AI trickle income is credited.
	EventAIIncome logging.EventType = "economy.ai_income"
)

// ProduceAcceptedPayload describes a debited production cost.
type ProduceAcceptedPayload struct {
	Variant    string `json:"variant"`
	CostGold   int    `json:"costGold"`
	CostWood   int    `json:"costWood"`
	CostSupply int    `json:"costSupply"`
	BuildingID string `json:"buildingId,omitempty"`
}

// ProductionCompletedPayload describes a spawned unit.
type ProductionCompletedPayload struct {
	Variant  string `json:"variant"`
	UnitID   string `json:"unitId"`
	Building string `json:"buildingId"`
}

// UpgradeAppliedPayload describes an upgrade increment.
type UpgradeAppliedPayload struct {
	Kind  string `json:"kind"`
	Level int    `json:"level"`
}

// AIIncomePayload describes a trickle income credit.
type AIIncomePayload struct {
	Gold float64 `json:"gold"`
}

func publish(ctx context.Context, pub logging.Publisher, evt logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     evt,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// ProduceAccepted publishes a successful production debit.
func ProduceAccepted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ProduceAcceptedPayload) {
	publish(ctx, pub, EventProduceAccepted, tick, actor, logging.SeverityInfo, payload)
}

// ProductionCompleted publishes a spawned unit.
func ProductionCompleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ProductionCompletedPayload) {
	publish(ctx, pub, EventProductionCompleted, tick, actor, logging.SeverityInfo, payload)
}

// UpgradeApplied publishes an upgrade increment.
func UpgradeApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UpgradeAppliedPayload) {
	publish(ctx, pub, EventUpgradeApplied, tick, actor, logging.SeverityInfo, payload)
}

// AIIncome publishes a trickle income credit.
func AIIncome(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AIIncomePayload) {
	publish(ctx, pub, EventAIIncome, tick, actor, logging.SeverityDebug, payload)
}
