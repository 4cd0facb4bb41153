package sim

import "clashfront/server/internal/mapgen"

// Team identifies a player's role within a room (spec.md §3).
type Team string

const (
	TeamHost  Team = "host"
	TeamGuest Team = "guest"
	TeamAI    Team = "ai"
)

// Resources tracks a player's gold/wood/supply.
type Resources struct {
	Gold       int `json:"gold"`
	Wood       int `json:"wood"`
	Supply     int `json:"supply"`
	MaxSupply  int `json:"maxSupply"`
}

// Upgrades tracks a player's researched levels (spec.md §3 caps: attack 3,
// defense 3, range 2).
type Upgrades struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Range   int `json:"range"`
}

// Player is a match participant. Every mutable field is owned by the
// engine or the room manager (spec.md §3) — the transport layer never
// writes to a Player directly.
type Player struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Team    Team      `json:"team"`
	Color   string    `json:"color"`
	Res     Resources `json:"resources"`
	Upg     Upgrades  `json:"upgrades"`
	Ready   bool      `json:"ready"`
	IsAI    bool      `json:"isAi"`
	Eliminated bool   `json:"eliminated"`
}

// MaxSupply implements spec.md §3's invariant formula.
func MaxSupply(bases, farms int) int {
	base := 10
	if bases > 1 {
		base += 10 * (bases - 1)
	}
	return base + 8*farms
}

// Point is a pixel-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CommandState is the unit command state machine (spec.md §4.C).
type CommandState string

const (
	CommandIdle          CommandState = "idle"
	CommandMoving        CommandState = "moving"
	CommandAttacking     CommandState = "attacking"
	CommandAttackMove    CommandState = "attackMove"
	CommandPatrol        CommandState = "patrol"
	CommandHoldPosition  CommandState = "holdPosition"
	CommandGathering     CommandState = "gathering"
	CommandReturning     CommandState = "returning"
	CommandBuilding      CommandState = "building"
	CommandHealing       CommandState = "healing"
)

// UnitVariant enumerates the producible unit kinds.
type UnitVariant string

const (
	UnitWorker   UnitVariant = "worker"
	UnitSoldier  UnitVariant = "soldier"
	UnitArcher   UnitVariant = "archer"
	UnitHealer   UnitVariant = "healer"
	UnitCatapult UnitVariant = "catapult"
)

// UnitStats is the baseline (un-upgraded) definition for a variant.
type UnitStats struct {
	MaxHP        float64
	Size         float64
	AttackRange  float64
	AttackDamage float64
	Cooldown     int // ticks
	MoveSpeed    float64 // px/tick
	Armor        float64
	Cost         Cost
	Ranged       bool
	ProjectileKind ProjectileKind
	HealRange    float64
}

// Cost is a production/build/upgrade price.
type Cost struct {
	Gold   int
	Wood   int
	Supply int
}

// UnitCatalog is the fixed baseline stat table (spec.md §8 scenario 3
// derives its expected numbers from these).
var UnitCatalog = map[UnitVariant]UnitStats{
	UnitWorker:   {MaxHP: 40, Size: 12, AttackRange: 0, AttackDamage: 0, Cooldown: 60, MoveSpeed: 1.6, Armor: 0, Cost: Cost{Gold: 50, Supply: 1}},
	UnitSoldier:  {MaxHP: 80, Size: 14, AttackRange: 20, AttackDamage: 10, Cooldown: 60, MoveSpeed: 1.8, Armor: 0, Cost: Cost{Gold: 60, Wood: 20, Supply: 1}},
	UnitArcher:   {MaxHP: 55, Size: 12, AttackRange: 140, AttackDamage: 8, Cooldown: 70, MoveSpeed: 1.7, Armor: 0, Cost: Cost{Gold: 50, Wood: 40, Supply: 1}, Ranged: true, ProjectileKind: ProjectileArrow},
	UnitHealer:   {MaxHP: 50, Size: 12, AttackRange: 0, AttackDamage: 0, Cooldown: 90, MoveSpeed: 1.6, Armor: 0, Cost: Cost{Gold: 70, Wood: 20, Supply: 1}, Ranged: true, ProjectileKind: ProjectileHeal, HealRange: 120},
	UnitCatapult: {MaxHP: 70, Size: 18, AttackRange: 220, AttackDamage: 30, Cooldown: 150, MoveSpeed: 1.1, Armor: 0, Cost: Cost{Gold: 120, Wood: 100, Supply: 2}, Ranged: true, ProjectileKind: ProjectileBoulder},
}

// Unit is a live combat/economy actor (spec.md §3).
type Unit struct {
	ID       string       `json:"id"`
	Owner    string       `json:"owner"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	HP       float64      `json:"hp"`
	MaxHP    float64      `json:"maxHp"`
	Size     float64      `json:"size"`
	Variant  UnitVariant  `json:"variant"`
	State    CommandState `json:"state"`
	TargetID string       `json:"targetId,omitempty"`
	TargetX  float64      `json:"targetX,omitempty"`
	TargetY  float64      `json:"targetY,omitempty"`
	HasTargetPos bool     `json:"-"`
	Waypoints []Point     `json:"waypoints,omitempty"`

	AttackRange     float64 `json:"attackRange"`
	AttackDamage    float64 `json:"attackDamage"`
	Cooldown        int     `json:"cooldown"`
	CooldownRemaining int   `json:"cooldownRemaining"`
	MoveSpeed       float64 `json:"moveSpeed"`
	Armor           float64 `json:"armor"`

	CarryKind   mapgen.ResourceKind `json:"carryKind,omitempty"`
	CarryAmount int                 `json:"carryAmount,omitempty"`
	GatherNodeID string             `json:"gatherNodeId,omitempty"`

	AttackGroundX float64 `json:"attackGroundX,omitempty"`
	AttackGroundY float64 `json:"attackGroundY,omitempty"`
	HasAttackGround bool  `json:"-"`

	PatrolA, PatrolB Point `json:"-"`
	HasPatrol        bool  `json:"-"`

	UnderAttack bool   `json:"underAttack"`
	LastHitTick uint64 `json:"lastHitTick,omitempty"`
}

// BuildingVariant enumerates the placeable building kinds.
type BuildingVariant string

const (
	BuildingBase           BuildingVariant = "base"
	BuildingBarracks       BuildingVariant = "barracks"
	BuildingFarm           BuildingVariant = "farm"
	BuildingTower          BuildingVariant = "tower"
	BuildingBlacksmith     BuildingVariant = "blacksmith"
	BuildingSiegeWorkshop  BuildingVariant = "siegeWorkshop"
	BuildingWall           BuildingVariant = "wall"
)

// BuildingStats is the fixed per-variant definition.
type BuildingStats struct {
	MaxHP        float64
	Footprint    float64
	BuildTimeSec float64
	Cost         Cost
	Produces     []UnitVariant
}

var BuildingCatalog = map[BuildingVariant]BuildingStats{
	BuildingBase:          {MaxHP: 1000, Footprint: 96, BuildTimeSec: 0, Cost: Cost{}},
	BuildingBarracks:      {MaxHP: 400, Footprint: 80, BuildTimeSec: 30, Cost: Cost{Gold: 150, Wood: 50}, Produces: []UnitVariant{UnitSoldier, UnitArcher, UnitHealer}},
	BuildingFarm:          {MaxHP: 200, Footprint: 60, BuildTimeSec: 20, Cost: Cost{Gold: 60, Wood: 40}},
	BuildingTower:         {MaxHP: 300, Footprint: 50, BuildTimeSec: 25, Cost: Cost{Gold: 100, Wood: 60}},
	BuildingBlacksmith:    {MaxHP: 300, Footprint: 70, BuildTimeSec: 35, Cost: Cost{Gold: 180, Wood: 80}},
	BuildingSiegeWorkshop: {MaxHP: 350, Footprint: 90, BuildTimeSec: 40, Cost: Cost{Gold: 220, Wood: 120}, Produces: []UnitVariant{UnitCatapult}},
	BuildingWall:          {MaxHP: 250, Footprint: 40, BuildTimeSec: 10, Cost: Cost{Gold: 20, Wood: 30}},
}

// ProductionItem is one queued unit within a Building's FIFO queue.
type ProductionItem struct {
	ID      string      `json:"id"`
	Variant UnitVariant `json:"variant"`
	Elapsed int         `json:"elapsedTicks"`
}

// Building is a live structure (spec.md §3).
type Building struct {
	ID       string          `json:"id"`
	Owner    string          `json:"owner"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	HP       float64         `json:"hp"`
	MaxHP    float64         `json:"maxHp"`
	Footprint float64        `json:"footprint"`
	Variant  BuildingVariant `json:"variant"`
	Progress float64         `json:"progress"` // 0-100
	Queue    []ProductionItem `json:"queue,omitempty"`
	RallyX   float64         `json:"rallyX"`
	RallyY   float64         `json:"rallyY"`
	HasRally bool            `json:"hasRally"`
	UnderAttack bool         `json:"underAttack"`

	towerCooldownRemaining int
}

// Complete reports whether construction has finished (spec.md §3
// invariant: progress<100 buildings cannot produce or shoot).
func (b *Building) Complete() bool { return b.Progress >= 100 }

// ResourceNode mirrors mapgen.ResourceNode but lives in pixel space and
// tracks live depletion during a match.
type ResourceNode struct {
	ID        string              `json:"id"`
	Kind      mapgen.ResourceKind `json:"kind"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Remaining int                 `json:"remaining"`
	Max       int                 `json:"max"`
}

// ProjectileKind enumerates the projectile visuals/behavior (spec.md §3).
type ProjectileKind string

const (
	ProjectileArrow   ProjectileKind = "arrow"
	ProjectileBoulder ProjectileKind = "boulder"
	ProjectileHeal    ProjectileKind = "heal"
)

// Projectile is a live in-flight effect (spec.md §3).
type Projectile struct {
	ID           string         `json:"id"`
	Kind         ProjectileKind `json:"kind"`
	Owner        string         `json:"owner"`
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	TargetID     string         `json:"targetId,omitempty"`
	TargetX      float64        `json:"targetX"`
	TargetY      float64        `json:"targetY"`
	Speed        float64        `json:"speed"`
	Damage       float64        `json:"damage"`
	SplashRadius float64        `json:"splashRadius,omitempty"`
	CreatedTick  uint64         `json:"createdTick"`
	FromAI       bool           `json:"-"`
}
