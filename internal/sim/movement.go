package sim

import (
	"math"

	"clashfront/server/internal/spatial"
)

const (
	unitRepulseRadius     = 50.0
	unitRepulseStrength   = 0.5
	buildingRepulseRadius = 30.0
	buildingRepulseStrength = 1.5
)

// steer computes the movement vector for a unit trying to reach (tx, ty),
// applying radial repulsion from nearby units and building edges before
// falling back to alternate headings, and stalling in place if every
// heading is blocked (spec.md §4.C movement/collision rules).
func (e *Engine) steer(u *Unit, tx, ty float64, index *spatial.Index) (dx, dy float64, blocked bool) {
	toTargetX := tx - u.X
	toTargetY := ty - u.Y
	d := math.Hypot(toTargetX, toTargetY)
	if d < 1e-6 {
		return 0, 0, false
	}
	baseAngle := math.Atan2(toTargetY, toTargetX)

	headings := []float64{0, math.Pi / 4, -math.Pi / 4, math.Pi / 2, -math.Pi / 2}
	for _, offset := range headings {
		angle := baseAngle + offset
		hx := math.Cos(angle)
		hy := math.Sin(angle)
		rx, ry := e.repulsion(u, index)
		mvx := hx*u.MoveSpeed + rx
		mvy := hy*u.MoveSpeed + ry
		nx, ny := u.X+mvx, u.Y+mvy
		if e.tilePassable(nx, ny) {
			return mvx, mvy, false
		}
	}
	return 0, 0, true
}

// repulsion returns the combined push-away vector from nearby units and
// building edges (spec.md §4.C collision avoidance).
func (e *Engine) repulsion(u *Unit, index *spatial.Index) (rx, ry float64) {
	for _, id := range index.QueryRadius(u.X, u.Y, unitRepulseRadius) {
		if id == u.ID {
			continue
		}
		other, ok := e.state.Units[id]
		if !ok {
			continue
		}
		d := dist(u.X, u.Y, other.X, other.Y)
		if d < 1e-6 || d >= unitRepulseRadius {
			continue
		}
		strength := (1 - d/unitRepulseRadius) * unitRepulseStrength
		rx += (u.X - other.X) / d * strength
		ry += (u.Y - other.Y) / d * strength
	}
	for _, b := range e.state.Buildings {
		edge := b.Footprint/2 + buildingRepulseRadius
		d := dist(u.X, u.Y, b.X, b.Y)
		if d >= edge || d < 1e-6 {
			continue
		}
		strength := (1 - d/edge) * buildingRepulseStrength
		rx += (u.X - b.X) / d * strength
		ry += (u.Y - b.Y) / d * strength
	}
	return rx, ry
}

func (e *Engine) tilePassable(x, y float64) bool {
	if x < 0 || y < 0 || x >= WorldPixelWidth || y >= WorldPixelHeight {
		return false
	}
	tx := int(x / TileSize)
	ty := int(y / TileSize)
	return e.state.Grid.At(tx, ty).Passable()
}

// advanceUnits moves every live unit one tick according to its command
// state (spec.md §4.C unit command state machine).
func (e *Engine) advanceUnits(index *spatial.Index) {
	for _, u := range e.state.Units {
		if u.HP <= 0 {
			continue
		}
		switch u.State {
		case CommandMoving, CommandAttackMove:
			e.stepTowardWaypoints(u, index)
		case CommandGathering:
			e.stepGathering(u, index)
		case CommandReturning:
			e.stepReturning(u, index)
		case CommandHoldPosition, CommandIdle, CommandAttacking, CommandBuilding, CommandHealing:
			// stationary states; attacking movement (chase) is handled here
			// only if the unit fell out of range.
			if u.State == CommandAttacking {
				e.chaseIfOutOfRange(u, index)
			}
		case CommandPatrol:
			e.stepPatrol(u, index)
		}
	}
}

func (e *Engine) chaseIfOutOfRange(u *Unit, index *spatial.Index) {
	target := e.resolveAttackTarget(u)
	if target == nil {
		u.State = CommandIdle
		return
	}
	tx, ty := targetPos(target)
	if dist(u.X, u.Y, tx, ty) <= u.AttackRange {
		return
	}
	dx, dy, blocked := e.steer(u, tx, ty, index)
	if !blocked {
		u.X += dx
		u.Y += dy
	}
}

func (e *Engine) stepTowardWaypoints(u *Unit, index *spatial.Index) {
	var tx, ty float64
	if len(u.Waypoints) > 0 {
		tx, ty = u.Waypoints[0].X, u.Waypoints[0].Y
	} else {
		tx, ty = u.TargetX, u.TargetY
	}
	d := dist(u.X, u.Y, tx, ty)
	if d <= u.MoveSpeed {
		u.X, u.Y = tx, ty
		if len(u.Waypoints) > 0 {
			u.Waypoints = u.Waypoints[1:]
			if len(u.Waypoints) == 0 {
				u.State = terminalStateFor(u)
			}
		} else {
			u.State = terminalStateFor(u)
		}
		return
	}
	dx, dy, blocked := e.steer(u, tx, ty, index)
	if blocked {
		return
	}
	u.X += dx
	u.Y += dy
	if u.State == CommandAttackMove {
		if target := e.resolveAttackTarget(u); target != nil {
			tx2, ty2 := targetPos(target)
			if dist(u.X, u.Y, tx2, ty2) <= u.AttackRange {
				u.State = CommandAttackMove // stays; combat.go fires while in range
			}
		}
	}
}

func terminalStateFor(u *Unit) CommandState {
	if u.State == CommandAttackMove {
		return CommandIdle
	}
	return CommandIdle
}

func (e *Engine) stepPatrol(u *Unit, index *spatial.Index) {
	tx, ty := u.TargetX, u.TargetY
	if dist(u.X, u.Y, tx, ty) <= u.MoveSpeed {
		u.X, u.Y = tx, ty
		// swap endpoints
		u.TargetX, u.TargetY = u.PatrolA.X, u.PatrolA.Y
		u.PatrolA = Point{X: tx, Y: ty}
		return
	}
	dx, dy, blocked := e.steer(u, tx, ty, index)
	if !blocked {
		u.X += dx
		u.Y += dy
	}
}
