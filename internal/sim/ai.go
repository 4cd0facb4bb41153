package sim

import (
	"context"
	"math"
)

// AI decision tuning. The interval mirrors the teacher's rat behavior's
// per-actor decision-delay gate (rat_ai.go's NextDecisionAt), collapsed
// to a single per-player cadence since the AI here plans an economy and
// an army rather than one wandering NPC.
const (
	aiDecisionInterval = 90 // ticks between AI decisions, ~1.5s at 60Hz
	aiAttackGroupSize  = 5
	aiMaxFarms         = 3
	aiWorkerTarget     = 6
)

// advanceAI runs one behavior-tree pass per AI-controlled player every
// aiDecisionInterval ticks: pull threatened units home, keep the economy
// growing, keep production queues full, and mass idle soldiers into an
// attack wave once enough have assembled (spec.md §4.F/§4.I's AI-slot
// opponent). Every branch drives the same order/build/produce entry
// points a human player's actions reach, so the AI never bypasses
// validation or the single-writer discipline the room enforces.
func (e *Engine) advanceAI(ctx context.Context) {
	if e.state.Tick%aiDecisionInterval != 0 {
		return
	}
	for _, p := range e.state.Players {
		if !p.IsAI || p.Eliminated {
			continue
		}
		e.aiDefend(p.ID)
		e.aiExpandEconomy(p.ID)
		e.aiProduce(ctx, p.ID)
		e.aiAttack(p.ID)
	}
}

// aiDefend recalls idle or holding combat units to the first owned
// building found flagged as under attack (any variant, not only bases),
// the highest-priority branch of the tree.
func (e *Engine) aiDefend(playerID string) {
	var target *Building
	for _, b := range e.state.Buildings {
		if b.Owner == playerID && b.HP > 0 && b.UnderAttack {
			target = b
			break
		}
	}
	if target == nil {
		return
	}
	ids := e.aiIdleCombatUnits(playerID)
	if len(ids) == 0 {
		return
	}
	e.orderAttackMove(playerID, Action{UnitIDs: ids, TargetX: target.X, TargetY: target.Y})
}

// aiExpandEconomy queues a farm once supply is running low, then a
// barracks once none exists, in that priority order — a scripted
// opponent following a fixed build order rather than a human's judgment.
func (e *Engine) aiExpandEconomy(playerID string) {
	p := e.state.Players[playerID]
	if p.Res.Supply+2 >= p.Res.MaxSupply &&
		e.aiCountComplete(playerID, BuildingFarm) < aiMaxFarms &&
		e.aiCanAfford(p, BuildingCatalog[BuildingFarm].Cost) {
		e.aiBuildNear(playerID, BuildingFarm)
		return
	}
	barracks := 0
	for _, b := range e.state.Buildings {
		if b.Owner == playerID && b.Variant == BuildingBarracks && b.HP > 0 {
			barracks++
		}
	}
	if barracks == 0 &&
		e.aiCanAfford(p, BuildingCatalog[BuildingBarracks].Cost) {
		e.aiBuildNear(playerID, BuildingBarracks)
	}
}

// aiProduce keeps a worker count topped up at the base, then keeps every
// idle barracks queue fed: an archer on every other decision, a soldier
// on the rest.
func (e *Engine) aiProduce(ctx context.Context, playerID string) {
	p := e.state.Players[playerID]
	if e.aiCountUnits(playerID, UnitWorker) < aiWorkerTarget {
		if base := e.nearestOwnedBase(playerID, 0, 0); base != nil {
			cost := UnitCatalog[UnitWorker].Cost
			if e.aiCanAfford(p, cost) && p.Res.Supply+cost.Supply <= p.Res.MaxSupply {
				e.enqueueProduction(ctx, playerID, base.ID, UnitWorker)
			}
		}
	}
	for _, b := range e.state.Buildings {
		if b.Owner != playerID || b.Variant != BuildingBarracks || !b.Complete() || len(b.Queue) > 0 {
			continue
		}
		variant := UnitSoldier
		if e.state.Tick%(aiDecisionInterval*2) == 0 {
			variant = UnitArcher
		}
		cost := UnitCatalog[variant].Cost
		if e.aiCanAfford(p, cost) && p.Res.Supply+cost.Supply <= p.Res.MaxSupply {
			e.enqueueProduction(ctx, playerID, b.ID, variant)
		}
	}
}

// aiAttack masses idle combat units and throws them at the nearest
// enemy base once enough have assembled, the lowest-priority branch.
func (e *Engine) aiAttack(playerID string) {
	ids := e.aiIdleCombatUnits(playerID)
	if len(ids) < aiAttackGroupSize {
		return
	}
	target := e.aiNearestEnemyBase(playerID)
	if target == nil {
		return
	}
	e.orderAttackMove(playerID, Action{UnitIDs: ids, TargetX: target.X, TargetY: target.Y})
}

func (e *Engine) aiIdleCombatUnits(playerID string) []string {
	var ids []string
	for _, u := range e.state.Units {
		if u.Owner != playerID || u.HP <= 0 || !isCombatUnit(u.Variant) {
			continue
		}
		if u.State == CommandIdle || u.State == CommandHoldPosition {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

func isCombatUnit(v UnitVariant) bool {
	switch v {
	case UnitSoldier, UnitArcher, UnitCatapult:
		return true
	default:
		return false
	}
}

func (e *Engine) aiCountComplete(owner string, variant BuildingVariant) int {
	n := 0
	for _, b := range e.state.Buildings {
		if b.Owner == owner && b.Variant == variant && b.HP > 0 && b.Complete() {
			n++
		}
	}
	return n
}

func (e *Engine) aiCountUnits(owner string, variant UnitVariant) int {
	n := 0
	for _, u := range e.state.Units {
		if u.Owner == owner && u.Variant == variant && u.HP > 0 {
			n++
		}
	}
	return n
}

func (e *Engine) aiNearestEnemyBase(owner string) *Building {
	var fromX, fromY float64
	if home := e.nearestOwnedBase(owner, 0, 0); home != nil {
		fromX, fromY = home.X, home.Y
	}
	var best *Building
	bestD := math.Inf(1)
	for _, b := range e.state.Buildings {
		if b.Owner != owner && b.Variant == BuildingBase && b.HP > 0 {
			if d := dist(fromX, fromY, b.X, b.Y); d < bestD {
				bestD = d
				best = b
			}
		}
	}
	return best
}

func (e *Engine) aiCanAfford(p *Player, cost Cost) bool {
	return p.Res.Gold >= cost.Gold && p.Res.Wood >= cost.Wood
}

// aiBuildNear drops a new building on a ring around the AI's base,
// spacing successive builds of the same variant out by angle so they
// don't stack on the same footprint.
func (e *Engine) aiBuildNear(playerID string, variant BuildingVariant) {
	base := e.nearestOwnedBase(playerID, 0, 0)
	if base == nil {
		return
	}
	stats := BuildingCatalog[variant]
	placed := 0
	for _, b := range e.state.Buildings {
		if b.Owner == playerID && b.Variant == variant && b.HP > 0 {
			placed++
		}
	}
	angle := float64(placed) * 0.9
	radius := base.Footprint/2 + stats.Footprint + 40
	x := clamp(base.X+radius*math.Cos(angle), stats.Footprint, WorldPixelWidth-stats.Footprint)
	y := clamp(base.Y+radius*math.Sin(angle), stats.Footprint, WorldPixelHeight-stats.Footprint)
	e.beginBuild(playerID, variant, x, y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
