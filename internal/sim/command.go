package sim

// ActionType enumerates the player-issued commands accepted by the engine
// (spec.md §4.D). Validation happens upstream in internal/validate; by the
// time an Action reaches Engine.Submit it is trusted.
type ActionType string

const (
	ActionMove         ActionType = "move"
	ActionAttack       ActionType = "attack"
	ActionAttackMove   ActionType = "attackMove"
	ActionPatrol       ActionType = "patrol"
	ActionHoldPosition ActionType = "holdPosition"
	ActionGather       ActionType = "gather"
	ActionBuild        ActionType = "build"
	ActionProduce      ActionType = "produce"
	ActionUpgrade      ActionType = "upgrade"
	ActionCancel       ActionType = "cancel"
	ActionSurrender    ActionType = "surrender"
)

// UpgradeKind names what an ActionUpgrade targets.
type UpgradeKind string

const (
	UpgradeAttack  UpgradeKind = "attack"
	UpgradeDefense UpgradeKind = "defense"
	UpgradeRange   UpgradeKind = "range"
)

// Action is one player-issued command, already shape- and ownership-checked.
type Action struct {
	Type ActionType `json:"type"`

	// UnitIDs selects the units this order applies to (move, attack,
	// attackMove, patrol, holdPosition, gather, cancel).
	UnitIDs []string `json:"unitIds,omitempty"`

	// TargetX/TargetY is a world point, used by move/attackMove/patrol/
	// build.
	TargetX float64 `json:"targetX,omitempty"`
	TargetY float64 `json:"targetY,omitempty"`
	// PatrolBX/PatrolBY is the second patrol endpoint.
	PatrolBX float64 `json:"patrolBX,omitempty"`
	PatrolBY float64 `json:"patrolBY,omitempty"`

	// TargetID names an entity, used by attack (unit or building id) and
	// gather (resource node id).
	TargetID string `json:"targetId,omitempty"`

	// BuildingVariant/BuildingID select what to construct or which
	// building produces/queues (build, produce, cancel-of-production).
	BuildingVariant BuildingVariant `json:"buildingVariant,omitempty"`
	BuildingID      string          `json:"buildingId,omitempty"`

	// UnitVariant selects what a building should produce.
	UnitVariant UnitVariant `json:"unitVariant,omitempty"`

	// UpgradeKind selects which upgrade track to advance.
	UpgradeKind UpgradeKind `json:"upgradeKind,omitempty"`
}

// Command wraps an Action with the metadata the engine and anti-cheat
// monitor need to reconstruct arrival order and provenance (spec.md §4.D).
type Command struct {
	PlayerID string
	Action   Action

	// OriginTick is the room's own tick counter at the moment the command
	// was staged, used for anti-cheat/latency accounting.
	OriginTick uint64
	// ClientTick is the tick the client declared it wants this action to
	// take effect on. The scheduler (internal/room's actionQueue) holds a
	// command back until the room's current tick reaches ClientTick
	// (spec.md §4.H/§6); a client that omits it defaults to 0, which is
	// always immediately ready.
	ClientTick uint64

	SubmittedAt int64 // unix millis, set by the transport layer
}
