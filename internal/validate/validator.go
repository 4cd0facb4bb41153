// Package validate implements the ordered action validator: a client
// timestamp skew check, then the eight stages rate limit, shape,
// ownership (preceded by a sender-is-a-player check), bounds, build
// placement, resources, upgrade cap, target legality. Every check
// short-circuits on first failure, in that order, so a rejected action
// always carries the earliest applicable reason.
package validate

import (
	"time"

	"clashfront/server/internal/ratelimit"
	"clashfront/server/internal/sim"
)

// maxClockSkew rejects actions whose client timestamp has drifted too
// far from the server's wall clock (spec.md §5 per-action timeout).
const maxClockSkew = 5 * time.Second

// Result carries the validator's verdict, mirroring the actionRejected
// wire reason field (spec.md §6).
type Result struct {
	OK     bool
	Reason string
}

func reject(reason string) Result { return Result{OK: false, Reason: reason} }

var ok = Result{OK: true}

// Validate runs the eight ordered checks against a submitted action.
// submittedAt is the client-asserted timestamp; now is server wall-clock.
func Validate(state *sim.GameState, limiter *ratelimit.PlayerLimiter, playerID string, action sim.Action, submittedAt, now time.Time) Result {
	if now.Sub(submittedAt) > maxClockSkew || submittedAt.Sub(now) > maxClockSkew {
		return reject("stale action timestamp")
	}
	if !limiter.Allow(now) {
		return reject("rate limit exceeded")
	}
	if r := checkShape(action); !r.OK {
		return r
	}
	player, exists := state.Players[playerID]
	if !exists {
		return reject("unknown player")
	}
	if r := checkOwnership(state, playerID, action); !r.OK {
		return r
	}
	if r := checkBounds(state, action); !r.OK {
		return r
	}
	if r := checkBuildPlacement(state, action); !r.OK {
		return r
	}
	if r := checkResources(player, action); !r.OK {
		return r
	}
	if r := checkUpgradeCap(player, action); !r.OK {
		return r
	}
	if r := checkTargetLegality(state, playerID, action); !r.OK {
		return r
	}
	return ok
}

func checkShape(a sim.Action) Result {
	switch a.Type {
	case sim.ActionMove, sim.ActionAttackMove, sim.ActionPatrol:
		if len(a.UnitIDs) == 0 {
			return reject("missing unitIds")
		}
	case sim.ActionAttack:
		if len(a.UnitIDs) == 0 || a.TargetID == "" {
			return reject("missing unitIds or targetId")
		}
	case sim.ActionHoldPosition:
		if len(a.UnitIDs) == 0 {
			return reject("missing unitIds")
		}
	case sim.ActionGather:
		if len(a.UnitIDs) == 0 || a.TargetID == "" {
			return reject("missing unitIds or targetId")
		}
	case sim.ActionBuild:
		if a.BuildingVariant == "" {
			return reject("missing buildingVariant")
		}
	case sim.ActionProduce:
		if a.BuildingID == "" || a.UnitVariant == "" {
			return reject("missing buildingId or unitVariant")
		}
	case sim.ActionUpgrade:
		if a.UpgradeKind == "" {
			return reject("missing upgradeKind")
		}
	case sim.ActionCancel:
		if len(a.UnitIDs) == 0 && a.BuildingID == "" {
			return reject("missing unitIds or buildingId")
		}
	case sim.ActionSurrender:
		// no payload required
	default:
		return reject("unknown action type")
	}
	return ok
}

func checkOwnership(state *sim.GameState, playerID string, a sim.Action) Result {
	for _, id := range a.UnitIDs {
		u, exists := state.Units[id]
		if !exists {
			return reject("unit not found")
		}
		if u.Owner != playerID {
			return reject("unit not owned by sender")
		}
	}
	if a.BuildingID != "" {
		b, exists := state.Buildings[a.BuildingID]
		if !exists {
			return reject("building not found")
		}
		if b.Owner != playerID {
			return reject("building not owned by sender")
		}
	}
	return ok
}

func checkBounds(state *sim.GameState, a sim.Action) Result {
	needsPoint := a.Type == sim.ActionMove || a.Type == sim.ActionAttackMove || a.Type == sim.ActionPatrol || a.Type == sim.ActionBuild
	if !needsPoint {
		return ok
	}
	if a.TargetX < 0 || a.TargetY < 0 || a.TargetX > sim.WorldPixelWidth || a.TargetY > sim.WorldPixelHeight {
		return reject("target position out of bounds")
	}
	tx := int(a.TargetX / sim.TileSize)
	ty := int(a.TargetY / sim.TileSize)
	if !state.Grid.At(tx, ty).Passable() {
		return reject("target tile impassable")
	}
	return ok
}

func checkBuildPlacement(state *sim.GameState, a sim.Action) Result {
	if a.Type != sim.ActionBuild {
		return ok
	}
	stats, known := sim.BuildingCatalog[a.BuildingVariant]
	if !known {
		return reject("unknown building variant")
	}
	tx := int(a.TargetX / sim.TileSize)
	ty := int(a.TargetY / sim.TileSize)
	if !state.Grid.At(tx, ty).Passable() {
		return reject("build site straddles impassable terrain")
	}
	for _, existing := range state.Buildings {
		minDist := (stats.Footprint+existing.Footprint)/2 + 10
		dx := a.TargetX - existing.X
		dy := a.TargetY - existing.Y
		if dx*dx+dy*dy < minDist*minDist {
			return reject("build site collides with an existing building")
		}
	}
	return ok
}

func checkResources(p *sim.Player, a sim.Action) Result {
	var cost sim.Cost
	switch a.Type {
	case sim.ActionBuild:
		cost = sim.BuildingCatalog[a.BuildingVariant].Cost
	case sim.ActionProduce:
		cost = sim.UnitCatalog[a.UnitVariant].Cost
	default:
		return ok
	}
	if p.Res.Gold < cost.Gold || p.Res.Wood < cost.Wood {
		return reject("insufficient resources")
	}
	if p.Res.Supply+cost.Supply > p.Res.MaxSupply {
		return reject("supply cap exceeded")
	}
	return ok
}

func checkUpgradeCap(p *sim.Player, a sim.Action) Result {
	if a.Type != sim.ActionUpgrade {
		return ok
	}
	switch a.UpgradeKind {
	case sim.UpgradeAttack:
		if p.Upg.Attack >= 3 {
			return reject("attack upgrade at cap")
		}
	case sim.UpgradeDefense:
		if p.Upg.Defense >= 3 {
			return reject("defense upgrade at cap")
		}
	case sim.UpgradeRange:
		if p.Upg.Range >= 2 {
			return reject("range upgrade at cap")
		}
	default:
		return reject("unknown upgrade kind")
	}
	return ok
}

func checkTargetLegality(state *sim.GameState, playerID string, a sim.Action) Result {
	switch a.Type {
	case sim.ActionAttack:
		if u, exists := state.Units[a.TargetID]; exists {
			if u.Owner == playerID {
				return reject("attack target is not hostile")
			}
			return ok
		}
		if b, exists := state.Buildings[a.TargetID]; exists {
			if b.Owner == playerID {
				return reject("attack target is not hostile")
			}
			return ok
		}
		return reject("attack target does not exist")
	case sim.ActionGather:
		node, exists := state.Resources[a.TargetID]
		if !exists || node.Remaining <= 0 {
			return reject("gather target is not a live resource node")
		}
		return ok
	case sim.ActionCancel:
		if a.BuildingID != "" {
			b, exists := state.Buildings[a.BuildingID]
			if !exists {
				return reject("cancel target building not found")
			}
			if len(b.Queue) == 0 {
				return reject("cancel target queue is empty")
			}
		}
		return ok
	default:
		return ok
	}
}
