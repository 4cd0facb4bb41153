package sim

import (
	"context"
	"math"

	"clashfront/server/internal/spatial"
	"clashfront/server/logging"
	"clashfront/server/logging/combat"
)

func publishUnitDeath(ctx context.Context, pub logging.Publisher, tick uint64, u *Unit) {
	combat.UnitDied(ctx, pub, tick,
		logging.EntityRef{ID: u.ID, Kind: logging.EntityKindUnit},
		combat.DeathPayload{Variant: string(u.Variant)})
}

func publishBuildingDeath(ctx context.Context, pub logging.Publisher, tick uint64, b *Building) {
	combat.BuildingDied(ctx, pub, tick,
		logging.EntityRef{ID: b.ID, Kind: logging.EntityKindBuilding},
		combat.DeathPayload{Variant: string(b.Variant)})
}

// unitDamage applies attack/defense upgrades to the baseline damage of a
// unit-on-unit or unit-on-building hit (spec.md §4.C damage formula:
// dealt = max(1, base + 2*attackUpgrade - 2*defenseUpgrade)).
func unitDamage(base float64, attackUpgrade, defenseUpgrade int) float64 {
	dealt := base + 2*float64(attackUpgrade) - 2*float64(defenseUpgrade)
	if dealt < 1 {
		dealt = 1
	}
	return dealt
}

// towerDamage applies the tower's stronger attack-upgrade scaling
// (spec.md §4.C: towers get +3*attackUpgrade instead of +2).
func towerDamage(base float64, attackUpgrade, defenseUpgrade int) float64 {
	dealt := base + 3*float64(attackUpgrade) - 2*float64(defenseUpgrade)
	if dealt < 1 {
		dealt = 1
	}
	return dealt
}

// splashFactor is the linear falloff applied to splash damage at distance
// d from ground zero within radius r (spec.md §4.C: dmg*(1-d/r/2)).
func splashFactor(d, r float64) float64 {
	if r <= 0 {
		return 0
	}
	f := 1 - (d/r)/2
	if f < 0 {
		return 0
	}
	return f
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// resolveMeleeAndRangedAttacks advances unit attack cooldowns, spawns
// projectiles for ranged units in range, and applies instant melee
// damage. Buildings' tower auto-attacks are handled separately in
// advanceBuildings.
func (e *Engine) resolveMeleeAndRangedAttacks(ctx context.Context) {
	s := e.state
	for _, u := range s.Units {
		if u.HP <= 0 {
			continue
		}
		if u.CooldownRemaining > 0 {
			u.CooldownRemaining--
		}
		if u.State != CommandAttacking && u.State != CommandAttackMove {
			continue
		}
		target := e.resolveAttackTarget(u)
		if target == nil {
			continue
		}
		tx, ty := targetPos(target)
		d := dist(u.X, u.Y, tx, ty)
		if d > u.AttackRange {
			continue
		}
		if u.CooldownRemaining > 0 {
			continue
		}
		u.CooldownRemaining = u.Cooldown

		stats := UnitCatalog[u.Variant]
		attacker := s.Players[u.Owner]
		if stats.Ranged {
			e.spawnProjectile(u, target, stats)
			continue
		}
		e.applyDamage(ctx, u.ID, logging.EntityKindUnit, target, unitDamage(u.AttackDamage, attacker.Upg.Attack, defenseUpgradeOf(s, target)), false)
	}
}

// resolveHealingActions lets an idle healer automatically find and heal
// the nearest wounded ally in range, firing a heal projectile exactly the
// way a ranged attacker fires a damage one. Healers have no player-issued
// "heal" order of their own — checkTargetLegality rejects any attack
// order against a friendly unit — so this is their only path to actually
// healing anyone, mirroring the auto-target acquisition attack-move
// already does for combat units (spec.md §4.C: healing is healer-only;
// firing produces a heal projectile).
func (e *Engine) resolveHealingActions(index *spatial.Index) {
	s := e.state
	for _, u := range s.Units {
		if u.HP <= 0 || u.Variant != UnitHealer {
			continue
		}
		if u.State != CommandIdle && u.State != CommandHoldPosition && u.State != CommandHealing {
			continue
		}
		if u.CooldownRemaining > 0 {
			continue
		}
		stats := UnitCatalog[u.Variant]
		id, ok := index.Nearest(u.X, u.Y, stats.HealRange, func(id string) bool {
			ally, exists := s.Units[id]
			return exists && ally.ID != u.ID && ally.Owner == u.Owner && ally.HP > 0 && ally.HP < ally.MaxHP
		})
		if !ok {
			if u.State == CommandHealing {
				u.State = CommandIdle
			}
			continue
		}
		u.State = CommandHealing
		u.CooldownRemaining = u.Cooldown
		e.spawnProjectile(u, &attackTarget{unit: s.Units[id]}, stats)
	}
}

// attackTarget is anything a unit or projectile can hit.
type attackTarget struct {
	unit     *Unit
	building *Building
}

func targetPos(t *attackTarget) (float64, float64) {
	if t.unit != nil {
		return t.unit.X, t.unit.Y
	}
	return t.building.X, t.building.Y
}

func (e *Engine) resolveAttackTarget(u *Unit) *attackTarget {
	s := e.state
	if u.TargetID != "" {
		if other, ok := s.Units[u.TargetID]; ok && other.HP > 0 {
			return &attackTarget{unit: other}
		}
		if b, ok := s.Buildings[u.TargetID]; ok && b.HP > 0 {
			return &attackTarget{building: b}
		}
		return nil
	}
	if u.State == CommandAttackMove {
		if id, ok := e.index.Nearest(u.X, u.Y, u.AttackRange, func(id string) bool {
			other, ok := s.Units[id]
			return ok && other.Owner != u.Owner && other.HP > 0
		}); ok {
			return &attackTarget{unit: s.Units[id]}
		}
	}
	return nil
}

func defenseUpgradeOf(s *GameState, t *attackTarget) int {
	var owner string
	if t.unit != nil {
		owner = t.unit.Owner
	} else {
		owner = t.building.Owner
	}
	if p, ok := s.Players[owner]; ok {
		return p.Upg.Defense
	}
	return 0
}

func (e *Engine) spawnProjectile(u *Unit, target *attackTarget, stats UnitStats) {
	tx, ty := targetPos(target)
	targetID := ""
	if target.unit != nil {
		targetID = target.unit.ID
	} else if target.building != nil {
		targetID = target.building.ID
	}
	owner := e.state.Players[u.Owner]
	proj := &Projectile{
		ID:           e.state.nextID("proj"),
		Kind:         stats.ProjectileKind,
		Owner:        u.Owner,
		X:            u.X,
		Y:            u.Y,
		TargetID:     targetID,
		TargetX:      tx,
		TargetY:      ty,
		Speed:        6,
		Damage:       u.AttackDamage,
		SplashRadius: splashRadiusFor(stats.ProjectileKind),
		CreatedTick:  e.state.Tick,
		FromAI:       owner != nil && owner.IsAI,
	}
	if stats.ProjectileKind == ProjectileHeal {
		proj.Damage = 15 // heal amount per cast; healers deal no AttackDamage
	}
	e.state.Projectiles[proj.ID] = proj
}

func splashRadiusFor(k ProjectileKind) float64 {
	if k == ProjectileBoulder {
		return 60
	}
	return 0
}

// advanceProjectiles moves in-flight projectiles and resolves impacts.
func (e *Engine) advanceProjectiles(ctx context.Context) {
	s := e.state
	for id, p := range s.Projectiles {
		if p.TargetID != "" {
			if u, ok := s.Units[p.TargetID]; ok {
				p.TargetX, p.TargetY = u.X, u.Y
			} else if b, ok := s.Buildings[p.TargetID]; ok {
				p.TargetX, p.TargetY = b.X, b.Y
			}
		}
		d := dist(p.X, p.Y, p.TargetX, p.TargetY)
		if d <= p.Speed {
			e.resolveProjectileImpact(ctx, p)
			delete(s.Projectiles, id)
			continue
		}
		dx := (p.TargetX - p.X) / d
		dy := (p.TargetY - p.Y) / d
		p.X += dx * p.Speed
		p.Y += dy * p.Speed
	}
}

func (e *Engine) resolveProjectileImpact(ctx context.Context, p *Projectile) {
	s := e.state
	if p.Kind == ProjectileHeal {
		if u, ok := s.Units[p.TargetID]; ok && u.HP > 0 {
			before := u.HP
			u.HP = math.Min(u.MaxHP, u.HP+p.Damage)
			combat.HealApplied(ctx, e.publisher, s.Tick,
				logging.EntityRef{ID: p.Owner, Kind: logging.EntityKindPlayer},
				logging.EntityRef{ID: u.ID, Kind: logging.EntityKindUnit},
				combat.HealPayload{Amount: u.HP - before})
		}
		return
	}

	dmg := p.Damage
	if p.FromAI {
		dmg *= e.state.Difficulty.DamageMultiplier()
	}

	if p.SplashRadius > 0 {
		attacker := s.Players[p.Owner]
		for _, u := range s.Units {
			if u.HP <= 0 || u.Owner == p.Owner {
				continue
			}
			d := dist(u.X, u.Y, p.TargetX, p.TargetY)
			if d > p.SplashRadius {
				continue
			}
			applied := dmg * splashFactor(d, p.SplashRadius)
			amount := unitDamage(applied, attacker.Upg.Attack, s.Players[u.Owner].Upg.Defense)
			e.applyDamage(ctx, p.Owner, logging.EntityKindUnit, &attackTarget{unit: u}, amount, true)
		}
		for _, b := range s.Buildings {
			if b.HP <= 0 || b.Owner == p.Owner {
				continue
			}
			d := dist(b.X, b.Y, p.TargetX, p.TargetY)
			if d > p.SplashRadius {
				continue
			}
			applied := dmg * splashFactor(d, p.SplashRadius)
			amount := unitDamage(applied, attacker.Upg.Attack, 0)
			e.applyDamage(ctx, p.Owner, logging.EntityKindUnit, &attackTarget{building: b}, amount, true)
		}
		return
	}

	if u, ok := s.Units[p.TargetID]; ok && u.HP > 0 {
		attacker := s.Players[p.Owner]
		amount := unitDamage(dmg, attacker.Upg.Attack, s.Players[u.Owner].Upg.Defense)
		e.applyDamage(ctx, p.Owner, logging.EntityKindUnit, &attackTarget{unit: u}, amount, false)
	} else if b, ok := s.Buildings[p.TargetID]; ok && b.HP > 0 {
		attacker := s.Players[p.Owner]
		amount := unitDamage(dmg, attacker.Upg.Attack, 0)
		e.applyDamage(ctx, p.Owner, logging.EntityKindUnit, &attackTarget{building: b}, amount, false)
	}
}

// applyDamage applies HP loss to a unit or building target, marks it
// under-attack, and publishes the audit event. Death cleanup happens in
// Engine.Tick's removal pass.
func (e *Engine) applyDamage(ctx context.Context, attackerID string, attackerKind logging.EntityKind, target *attackTarget, amount float64, splash bool) {
	if target.unit != nil {
		u := target.unit
		u.HP -= amount
		u.UnderAttack = true
		u.LastHitTick = e.state.Tick
		combat.DamageDealt(ctx, e.publisher, e.state.Tick,
			logging.EntityRef{ID: attackerID, Kind: attackerKind},
			logging.EntityRef{ID: u.ID, Kind: logging.EntityKindUnit},
			combat.DamagePayload{Amount: amount, Splash: splash, RemainingHP: math.Max(0, u.HP)})
		return
	}
	b := target.building
	b.HP -= amount
	b.UnderAttack = true
	combat.DamageDealt(ctx, e.publisher, e.state.Tick,
		logging.EntityRef{ID: attackerID, Kind: attackerKind},
		logging.EntityRef{ID: b.ID, Kind: logging.EntityKindBuilding},
		combat.DamagePayload{Amount: amount, Splash: splash, RemainingHP: math.Max(0, b.HP)})
}

// advanceTowerAttacks lets completed towers auto-fire at the nearest
// enemy unit in range (spec.md §4.C: towers act like ranged units with
// no owner-issued command).
func (e *Engine) advanceTowerAttacks(ctx context.Context, index *spatial.Index) {
	const towerCooldown = 60
	const towerDamageBase = 12.0

	for _, b := range e.state.Buildings {
		if b.Variant != BuildingTower || !b.Complete() || b.HP <= 0 {
			continue
		}
		if b.towerCooldownRemaining > 0 {
			b.towerCooldownRemaining--
			continue
		}
		owner := e.state.Players[b.Owner]
		towerRange := 150.0 + 10.0*float64(owner.Upg.Range)
		id, ok := index.Nearest(b.X, b.Y, towerRange, func(id string) bool {
			u, ok := e.state.Units[id]
			return ok && u.Owner != b.Owner && u.HP > 0
		})
		if !ok {
			continue
		}
		target := e.state.Units[id]
		amount := towerDamage(towerDamageBase, owner.Upg.Attack, e.state.Players[target.Owner].Upg.Defense)
		e.applyDamage(ctx, b.ID, logging.EntityKindBuilding, &attackTarget{unit: target}, amount, false)
		b.towerCooldownRemaining = towerCooldown
	}
}
