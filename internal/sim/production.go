package sim

import (
	"context"
	"math"

	"clashfront/server/internal/spatial"
	"clashfront/server/logging"
	"clashfront/server/logging/economy"
)

const (
	gatherRange   = 20.0
	gatherAmount  = 5
	gatherTicks   = 40 // one gatherAmount extraction every ~0.67s at 60Hz
	carryCapacity = 10
)

// stepGathering walks a worker to its assigned node and extracts
// resources once in range (spec.md §4.C economy loop).
func (e *Engine) stepGathering(u *Unit, index *spatial.Index) {
	node, ok := e.state.Resources[u.GatherNodeID]
	if !ok || node.Remaining <= 0 {
		u.State = CommandIdle
		return
	}
	d := dist(u.X, u.Y, node.X, node.Y)
	if d > gatherRange {
		dx, dy, blocked := e.steer(u, node.X, node.Y, index)
		if !blocked {
			u.X += dx
			u.Y += dy
		}
		return
	}
	if u.CooldownRemaining > 0 {
		u.CooldownRemaining--
		return
	}
	take := gatherAmount
	if take > node.Remaining {
		take = node.Remaining
	}
	if take > carryCapacity-u.CarryAmount {
		take = carryCapacity - u.CarryAmount
	}
	if take <= 0 {
		u.State = CommandReturning
		return
	}
	node.Remaining -= take
	u.CarryAmount += take
	u.CarryKind = node.Kind
	u.CooldownRemaining = gatherTicks
	if u.CarryAmount >= carryCapacity || node.Remaining <= 0 {
		u.State = CommandReturning
	}
}

// stepReturning walks a laden worker back to the nearest owned base to
// deposit its cargo, then resumes gathering from the same node.
func (e *Engine) stepReturning(u *Unit, index *spatial.Index) {
	base := e.nearestOwnedBase(u.Owner, u.X, u.Y)
	if base == nil {
		u.State = CommandIdle
		return
	}
	d := dist(u.X, u.Y, base.X, base.Y)
	dropRange := base.Footprint/2 + 20
	if d > dropRange {
		dx, dy, blocked := e.steer(u, base.X, base.Y, index)
		if !blocked {
			u.X += dx
			u.Y += dy
		}
		return
	}
	player := e.state.Players[u.Owner]
	switch u.CarryKind {
	case "gold":
		player.Res.Gold += u.CarryAmount
	case "wood":
		player.Res.Wood += u.CarryAmount
	}
	u.CarryAmount = 0
	if node, ok := e.state.Resources[u.GatherNodeID]; ok && node.Remaining > 0 {
		u.State = CommandGathering
	} else {
		u.State = CommandIdle
	}
}

func (e *Engine) nearestOwnedBase(owner string, x, y float64) *Building {
	var best *Building
	bestD := math.Inf(1)
	for _, b := range e.state.Buildings {
		if b.Owner != owner || b.Variant != BuildingBase || b.HP <= 0 {
			continue
		}
		d := dist(x, y, b.X, b.Y)
		if d < bestD {
			bestD = d
			best = b
		}
	}
	return best
}

// beginBuild debits resources and drops a construction-in-progress
// building at the requested point (spec.md §4.C build placement).
func (e *Engine) beginBuild(playerID string, variant BuildingVariant, x, y float64) {
	player := e.state.Players[playerID]
	stats := BuildingCatalog[variant]
	player.Res.Gold -= stats.Cost.Gold
	player.Res.Wood -= stats.Cost.Wood

	b := &Building{
		ID:       e.state.nextID("building"),
		Owner:    playerID,
		X:        x,
		Y:        y,
		Variant:  variant,
		MaxHP:    stats.MaxHP,
		HP:       stats.MaxHP * 0.1,
		Footprint: stats.Footprint,
		Progress: 0,
	}
	e.state.Buildings[b.ID] = b
}

// enqueueProduction adds a unit to a building's FIFO queue, debiting cost
// up front (spec.md §4.C: no refund on cancel).
func (e *Engine) enqueueProduction(ctx context.Context, playerID, buildingID string, variant UnitVariant) {
	b, ok := e.state.Buildings[buildingID]
	if !ok {
		return
	}
	player := e.state.Players[playerID]
	stats := UnitCatalog[variant]
	player.Res.Gold -= stats.Cost.Gold
	player.Res.Wood -= stats.Cost.Wood
	player.Res.Supply += stats.Cost.Supply

	item := ProductionItem{ID: e.state.nextID("prod"), Variant: variant}
	b.Queue = append(b.Queue, item)

	economy.ProduceAccepted(ctx, e.publisher, e.state.Tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		economy.ProduceAcceptedPayload{
			Variant:    string(variant),
			CostGold:   stats.Cost.Gold,
			CostWood:   stats.Cost.Wood,
			CostSupply: stats.Cost.Supply,
			BuildingID: buildingID,
		})
}

// recomputeMaxSupply recounts playerID's completed bases and farms and
// updates Resources.MaxSupply to match (spec.md §3's formula, re-applied
// whenever a supply-providing building finishes construction or dies).
func (e *Engine) recomputeMaxSupply(playerID string) {
	player, ok := e.state.Players[playerID]
	if !ok {
		return
	}
	bases, farms := 0, 0
	for _, b := range e.state.Buildings {
		if b.Owner != playerID || b.HP <= 0 || !b.Complete() {
			continue
		}
		switch b.Variant {
		case BuildingBase:
			bases++
		case BuildingFarm:
			farms++
		}
	}
	player.Res.MaxSupply = MaxSupply(bases, farms)
}

// advanceBuildings progresses construction and production queues by one
// tick (spec.md §4.C construction/production timers).
func (e *Engine) advanceBuildings(ctx context.Context) {
	for _, b := range e.state.Buildings {
		if b.HP <= 0 {
			continue
		}
		if !b.Complete() {
			stats := BuildingCatalog[b.Variant]
			if stats.BuildTimeSec <= 0 {
				b.Progress = 100
			} else {
				perTick := 100.0 / (stats.BuildTimeSec * TickRate)
				b.Progress = math.Min(100, b.Progress+perTick)
				b.HP = stats.MaxHP * (0.1 + 0.9*b.Progress/100)
			}
			if b.Complete() && (b.Variant == BuildingBase || b.Variant == BuildingFarm) {
				e.recomputeMaxSupply(b.Owner)
			}
			continue
		}
		if len(b.Queue) == 0 {
			continue
		}
		item := &b.Queue[0]
		unitStats := UnitCatalog[item.Variant]
		item.Elapsed++
		if item.Elapsed < unitStats.Cooldown {
			continue
		}
		e.completeProduction(ctx, b, item.Variant)
		b.Queue = b.Queue[1:]
	}
}

func (e *Engine) completeProduction(ctx context.Context, b *Building, variant UnitVariant) {
	spawnX, spawnY := b.X, b.Y+b.Footprint/2+20
	u := &Unit{
		ID:      e.state.nextID("unit"),
		Owner:   b.Owner,
		X:       spawnX,
		Y:       spawnY,
		Variant: variant,
		State:   CommandIdle,
	}
	applyUnitBaseline(u)
	e.state.Units[u.ID] = u

	if b.HasRally {
		u.State = CommandMoving
		u.TargetX, u.TargetY = b.RallyX, b.RallyY
	}

	economy.ProductionCompleted(ctx, e.publisher, e.state.Tick,
		logging.EntityRef{ID: b.ID, Kind: logging.EntityKindBuilding},
		economy.ProductionCompletedPayload{Variant: string(variant), UnitID: u.ID, Building: b.ID})
}

// applyUpgrade advances a researched upgrade track, capped per spec.md
// §3 (attack/defense 0-3, range 0-2).
func (e *Engine) applyUpgrade(ctx context.Context, playerID string, kind UpgradeKind) {
	player := e.state.Players[playerID]
	limit := 3
	if kind == UpgradeRange {
		limit = 2
	}
	if upgradeLevel(player.Upg, kind) >= limit {
		return
	}
	switch kind {
	case UpgradeAttack:
		player.Upg.Attack++
	case UpgradeDefense:
		player.Upg.Defense++
	case UpgradeRange:
		player.Upg.Range++
	}
	economy.UpgradeApplied(ctx, e.publisher, e.state.Tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		economy.UpgradeAppliedPayload{Kind: string(kind), Level: upgradeLevel(player.Upg, kind)})
}

func upgradeLevel(u Upgrades, kind UpgradeKind) int {
	switch kind {
	case UpgradeAttack:
		return u.Attack
	case UpgradeDefense:
		return u.Defense
	case UpgradeRange:
		return u.Range
	}
	return 0
}
