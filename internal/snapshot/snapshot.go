// Package snapshot builds the per-player wire representation of a match
// (spec.md §4.G). Build defaults to the fog-correct filtered variant;
// IncludeAll reproduces an unfiltered broadcast for debugging/spectator
// tooling (spec.md's Open Question (b)).
package snapshot

import (
	"clashfront/server/internal/sim"
)

// PlayerView is one player's resources/upgrades as seen in a snapshot.
type PlayerView struct {
	PlayerID  string       `json:"playerId"`
	Resources sim.Resources `json:"resources"`
	Upgrades  sim.Upgrades  `json:"upgrades"`
	Eliminated bool        `json:"eliminated"`
}

// Snapshot is the full wire payload sent once per snapshot tick.
type Snapshot struct {
	Tick        uint64                `json:"tick"`
	TimestampMS int64                 `json:"timestamp"`
	Units       []*sim.Unit           `json:"units"`
	Buildings   []*sim.Building       `json:"buildings"`
	Projectiles []*sim.Projectile     `json:"projectiles"`
	PerPlayer   []PlayerView          `json:"perPlayer"`
	GameOver    bool                  `json:"gameOver"`
	Winner      string                `json:"winner,omitempty"`
}

// Options controls how Build filters entities.
type Options struct {
	// IncludeAll disables fog filtering entirely (debug/spectator mode).
	IncludeAll bool
}

// Build renders state from forPlayer's point of view: their own units,
// buildings, and projectiles are always included; everyone else's are
// included only if they currently sit on a tile forPlayer has discovered.
func Build(state *sim.GameState, forPlayer string, timestampMS int64, opts Options) Snapshot {
	snap := Snapshot{
		Tick:        state.Tick,
		TimestampMS: timestampMS,
		GameOver:    state.Ended,
		Winner:      state.WinnerID,
	}

	visible := func(owner string, x, y float64) bool {
		if opts.IncludeAll || owner == forPlayer {
			return true
		}
		tx := int(x / sim.TileSize)
		ty := int(y / sim.TileSize)
		return state.IsDiscovered(forPlayer, tx, ty)
	}

	for _, u := range state.Units {
		if visible(u.Owner, u.X, u.Y) {
			snap.Units = append(snap.Units, u)
		}
	}
	for _, b := range state.Buildings {
		if visible(b.Owner, b.X, b.Y) {
			snap.Buildings = append(snap.Buildings, b)
		}
	}
	for _, p := range state.Projectiles {
		if visible(p.Owner, p.X, p.Y) {
			snap.Projectiles = append(snap.Projectiles, p)
		}
	}
	for id, p := range state.Players {
		snap.PerPlayer = append(snap.PerPlayer, PlayerView{
			PlayerID:   id,
			Resources:  p.Res,
			Upgrades:   p.Upg,
			Eliminated: p.Eliminated,
		})
	}
	return snap
}
