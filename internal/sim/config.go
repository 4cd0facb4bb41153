// Package sim owns the canonical GameState and the per-tick engine that
// advances it (spec.md §4.C). It is the core of the server: deterministic,
// side-effect-free except through the logging.Publisher it is given.
package sim

import "time"

// Tunable constants from spec.md §6.
const (
	TickRate     = 60
	SnapshotRate = 10
	VisionRange  = 200.0
	TileSize     = 40.0
	MapWidth     = 60
	MapHeight    = 60
	CollisionCell = 100.0

	TickInterval = time.Second / TickRate

	WorldPixelWidth  = MapWidth * TileSize
	WorldPixelHeight = MapHeight * TileSize
)

// Difficulty scales AI aggression and its damage multiplier (spec.md §4.C
// "AI-damage-multiplier applies only to AI-owned projectiles").
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// DamageMultiplier returns the AI damage scalar for the given difficulty.
func (d Difficulty) DamageMultiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 0.7
	case DifficultyHard:
		return 1.3
	default:
		return 1.0
	}
}

// IncomeMultiplier scales the AI trickle income (spec.md §4.C step 5).
func (d Difficulty) IncomeMultiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 0.7
	case DifficultyHard:
		return 1.3
	default:
		return 1.0
	}
}
