package sim

import "math"

// updateFog marks every tile within VisionRange of each player's live
// units and buildings as discovered (spec.md §4.G: discovery is
// monotonic — nothing is ever un-discovered).
func (e *Engine) updateFog() {
	s := e.state
	visionTiles := int(math.Ceil(VisionRange / TileSize))

	for _, p := range s.Players {
		set := s.Discovered[p.ID]
		if set == nil {
			set = make(map[int]struct{})
			s.Discovered[p.ID] = set
		}
		mark := func(x, y float64) {
			cx := int(x / TileSize)
			cy := int(y / TileSize)
			for ty := cy - visionTiles; ty <= cy+visionTiles; ty++ {
				for tx := cx - visionTiles; tx <= cx+visionTiles; tx++ {
					if tx < 0 || ty < 0 || tx >= s.Grid.Width || ty >= s.Grid.Height {
						continue
					}
					if dist(float64(tx)*TileSize, float64(ty)*TileSize, x, y) > VisionRange {
						continue
					}
					set[ty*s.Grid.Width+tx] = struct{}{}
				}
			}
		}
		for _, u := range s.Units {
			if u.Owner == p.ID && u.HP > 0 {
				mark(u.X, u.Y)
			}
		}
		for _, b := range s.Buildings {
			if b.Owner == p.ID && b.HP > 0 {
				mark(b.X, b.Y)
			}
		}
	}
}

// IsDiscovered reports whether the player has ever seen the given tile.
func (s *GameState) IsDiscovered(playerID string, tx, ty int) bool {
	set, ok := s.Discovered[playerID]
	if !ok {
		return false
	}
	_, seen := set[ty*s.Grid.Width+tx]
	return seen
}
