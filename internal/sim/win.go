package sim

import "fmt"

// ArbitrateWin is a pure function over the state's player and building
// collections (spec.md §4.F). A player is eliminated once they own zero
// base buildings; the last standing player wins, and simultaneous
// elimination in the same tick is a draw. Surrender and disconnect are
// injected as an elimination flag by the caller before this runs. reason
// is the wire-visible textual verdict: "<name> wins by elimination" for a
// win, "draw" for simultaneous elimination, "" while the match continues.
func ArbitrateWin(s *GameState) (winnerID, reason string, ended bool) {
	basesByOwner := make(map[string]int)
	for _, b := range s.Buildings {
		if b.Variant == BuildingBase && b.HP > 0 {
			basesByOwner[b.Owner]++
		}
	}

	var alive []string
	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		if basesByOwner[p.ID] > 0 {
			alive = append(alive, p.ID)
		} else {
			p.Eliminated = true
		}
	}

	switch len(alive) {
	case 0:
		return "", "draw", true
	case 1:
		winner := alive[0]
		name := winner
		if p, ok := s.Players[winner]; ok && p.Name != "" {
			name = p.Name
		}
		return winner, fmt.Sprintf("%s wins by elimination", name), true
	default:
		return "", "", false
	}
}

// Surrender marks a player eliminated immediately, to be picked up by the
// next ArbitrateWin call (spec.md §4.F surrender/disconnect handling).
func (e *Engine) Surrender(playerID string) {
	if p, ok := e.state.Players[playerID]; ok {
		p.Eliminated = true
	}
}
