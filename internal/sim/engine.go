package sim

import (
	"context"
	"fmt"

	"clashfront/server/internal/spatial"
	"clashfront/server/logging"
)

// Engine advances one room's GameState. It is not safe for concurrent
// use: the room package owns a single goroutine per room and is the only
// caller of Submit/Tick (spec.md §4.C single-writer model).
type Engine struct {
	state     *GameState
	publisher logging.Publisher
	index     *spatial.Index

	aiIncomeAccum float64
}

// NewEngine wraps a GameState. pub may be nil, in which case events are
// silently dropped.
func NewEngine(state *GameState, pub logging.Publisher) *Engine {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Engine{state: state, publisher: pub, index: spatial.New()}
}

// State exposes the underlying state for read-only snapshotting. Callers
// outside this package must not mutate the returned value.
func (e *Engine) State() *GameState { return e.state }

// Submit applies one player action's effects immediately. The scheduler
// is responsible for calling Submit with commands in arrival order before
// the next Tick, so no internal queue is needed here (spec.md §4.C/§4.H).
func (e *Engine) Submit(ctx context.Context, cmd Command) error {
	if e.state.Status != StatusPlaying {
		return fmt.Errorf("sim: room not playing")
	}
	a := cmd.Action
	switch a.Type {
	case ActionMove:
		e.orderMove(cmd.PlayerID, a)
	case ActionAttack:
		e.orderAttack(cmd.PlayerID, a)
	case ActionAttackMove:
		e.orderAttackMove(cmd.PlayerID, a)
	case ActionPatrol:
		e.orderPatrol(cmd.PlayerID, a)
	case ActionHoldPosition:
		e.orderHold(cmd.PlayerID, a)
	case ActionGather:
		e.orderGather(cmd.PlayerID, a)
	case ActionBuild:
		e.beginBuild(cmd.PlayerID, a.BuildingVariant, a.TargetX, a.TargetY)
	case ActionProduce:
		e.enqueueProduction(ctx, cmd.PlayerID, a.BuildingID, a.UnitVariant)
	case ActionUpgrade:
		e.applyUpgrade(ctx, cmd.PlayerID, a.UpgradeKind)
	case ActionCancel:
		e.orderCancel(cmd.PlayerID, a)
	case ActionSurrender:
		e.Surrender(cmd.PlayerID)
	default:
		return fmt.Errorf("sim: unknown action type %q", a.Type)
	}
	return nil
}

func (e *Engine) ownedUnits(playerID string, ids []string) []*Unit {
	var out []*Unit
	for _, id := range ids {
		if u, ok := e.state.Units[id]; ok && u.Owner == playerID && u.HP > 0 {
			out = append(out, u)
		}
	}
	return out
}

func (e *Engine) orderMove(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.State = CommandMoving
		u.TargetX, u.TargetY = a.TargetX, a.TargetY
		u.Waypoints = nil
		u.TargetID = ""
	}
}

func (e *Engine) orderAttack(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.TargetID = a.TargetID
		u.State = CommandAttacking
	}
}

func (e *Engine) orderAttackMove(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.State = CommandAttackMove
		u.TargetX, u.TargetY = a.TargetX, a.TargetY
		u.TargetID = ""
	}
}

func (e *Engine) orderPatrol(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.State = CommandPatrol
		u.PatrolA = Point{X: a.TargetX, Y: a.TargetY}
		u.PatrolB = Point{X: a.PatrolBX, Y: a.PatrolBY}
		u.TargetX, u.TargetY = a.PatrolBX, a.PatrolBY
		u.HasPatrol = true
	}
}

func (e *Engine) orderHold(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.State = CommandHoldPosition
		u.TargetID = ""
	}
}

func (e *Engine) orderGather(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		if u.Variant != UnitWorker {
			continue
		}
		u.State = CommandGathering
		u.GatherNodeID = a.TargetID
	}
}

func (e *Engine) orderCancel(playerID string, a Action) {
	for _, u := range e.ownedUnits(playerID, a.UnitIDs) {
		u.State = CommandIdle
		u.TargetID = ""
		u.Waypoints = nil
	}
	if a.BuildingID != "" {
		if b, ok := e.state.Buildings[a.BuildingID]; ok && b.Owner == playerID && len(b.Queue) > 0 {
			b.Queue = b.Queue[1:]
		}
	}
}

// Tick advances the simulation by one fixed timestep, in the documented
// order: projectiles, buildings, tower attacks, melee/ranged combat,
// healer auto-acquisition, AI decisions, units, death cleanup, AI
// income, fog, win arbitration (spec.md §4.C).
func (e *Engine) Tick(ctx context.Context) {
	if e.state.Status != StatusPlaying {
		return
	}
	e.rebuildIndex()

	e.advanceProjectiles(ctx)
	e.advanceBuildings(ctx)
	e.advanceTowerAttacks(ctx, e.index)
	e.resolveMeleeAndRangedAttacks(ctx)
	e.resolveHealingActions(e.index)
	e.advanceAI(ctx)
	e.advanceUnits(e.index)
	e.removeDead(ctx)
	e.tickAIIncome()
	e.updateFog()

	if winner, reason, ended := ArbitrateWin(e.state); ended {
		e.state.WinnerID = winner
		e.state.WinReason = reason
		e.state.Ended = true
		e.state.Status = StatusEnded
	}

	e.state.Tick++
}

func (e *Engine) rebuildIndex() {
	e.index.Clear()
	for _, u := range e.state.Units {
		if u.HP > 0 {
			e.index.Insert(u.ID, u.X, u.Y)
		}
	}
}

// removeDead deletes zero-HP units and buildings, publishing a death
// event and reclaiming supply for units (spec.md §3 invariant: supply is
// only ever consumed by live units).
func (e *Engine) removeDead(ctx context.Context) {
	for id, u := range e.state.Units {
		if u.HP > 0 {
			continue
		}
		if p, ok := e.state.Players[u.Owner]; ok {
			p.Res.Supply -= UnitCatalog[u.Variant].Cost.Supply
			if p.Res.Supply < 0 {
				p.Res.Supply = 0
			}
		}
		publishUnitDeath(ctx, e.publisher, e.state.Tick, u)
		delete(e.state.Units, id)
	}
	for id, b := range e.state.Buildings {
		if b.HP > 0 {
			continue
		}
		publishBuildingDeath(ctx, e.publisher, e.state.Tick, b)
		delete(e.state.Buildings, id)
		if b.Variant == BuildingBase || b.Variant == BuildingFarm {
			e.recomputeMaxSupply(b.Owner)
		}
	}
}

// tickAIIncome grants the AI player a 0.5*difficultyMultiplier gold
// trickle every tick, accumulated fractionally until a whole gold is
// owed (spec.md §4.C step 5 AI income trickle).
func (e *Engine) tickAIIncome() {
	const baseGoldPerTick = 0.5
	for _, p := range e.state.Players {
		if !p.IsAI || p.Eliminated {
			continue
		}
		e.aiIncomeAccum += baseGoldPerTick * e.state.Difficulty.IncomeMultiplier()
		if e.aiIncomeAccum >= 1 {
			whole := int(e.aiIncomeAccum)
			p.Res.Gold += whole
			e.aiIncomeAccum -= float64(whole)
		}
	}
}
