// Package mapgen is a pure, seeded terrain and resource generator
// (spec.md §4.A). Generate is a pure function of (width, height, seed) —
// it never touches a shared or global RNG, following the teacher's
// world_random.go discipline of threading an explicit generator instance.
package mapgen

import (
	"fmt"
	"hash/fnv"
)

// TileKind enumerates the seven terrain kinds spec.md §4.A requires.
type TileKind string

const (
	TileGrass    TileKind = "grass"
	TileSand     TileKind = "sand"
	TileSwamp    TileKind = "swamp"
	TileWater    TileKind = "water"
	TileMountain TileKind = "mountain"
	TileGold     TileKind = "gold"
	TileForest   TileKind = "forest"
)

// Passable reports whether units may enter a tile of this kind.
func (k TileKind) Passable() bool {
	switch k {
	case TileWater, TileMountain:
		return false
	default:
		return true
	}
}

// ResourceKind mirrors the two harvestable resource kinds in spec.md §3.
type ResourceKind string

const (
	ResourceGold ResourceKind = "gold"
	ResourceWood ResourceKind = "wood"
)

// ResourceNode is a harvestable deposit placed by the generator.
type ResourceNode struct {
	ID        string       `json:"id"`
	Kind      ResourceKind `json:"kind"`
	TileX     int          `json:"tileX"`
	TileY     int          `json:"tileY"`
	Remaining int          `json:"remaining"`
	Max       int          `json:"max"`
}

// TileGrid is a row-major width*height slice of tile kinds.
type TileGrid struct {
	Width  int
	Height int
	Tiles  []TileKind
}

// At returns the tile kind at (x, y); out-of-bounds coordinates return
// TileMountain (impassable) rather than panicking, so callers doing bounds
// math never need a second bounds check.
func (g TileGrid) At(x, y int) TileKind {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return TileMountain
	}
	return g.Tiles[y*g.Width+x]
}

func (g TileGrid) set(x, y int, kind TileKind) {
	g.Tiles[y*g.Width+x] = kind
}

const (
	goldMin, goldMax     = 1500, 3000
	forestMin, forestMax = 800, 1500
	spawnSquare          = 7
)

// lcg is a reproducible linear-congruential generator, seeded by hashing
// the caller's string seed. It is never a package-level variable — every
// caller gets its own instance, so two concurrent generations with the
// same seed cannot interfere with each other.
type lcg struct{ state uint64 }

func newLCG(seed string) *lcg {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	state := h.Sum64()
	if state == 0 {
		state = 0x9E3779B97F4A7C15
	}
	return &lcg{state: state}
}

func (g *lcg) next() uint64 {
	// Knuth's MMIX multiplier and increment; period is more than sufficient for a
	// 60x60 map generation pass.
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state
}

func (g *lcg) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.next() % uint64(n))
}

func (g *lcg) between(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.intn(max-min+1)
}

// Generate produces a deterministic tile grid and resource list for the
// given dimensions and seed. Identical inputs always yield identical
// outputs (testable property: "Seeded map parity", spec.md §8).
func Generate(width, height int, seed string) (TileGrid, []ResourceNode, error) {
	if width <= 0 || height <= 0 {
		return TileGrid{}, nil, fmt.Errorf("mapgen: malformed dimensions %dx%d", width, height)
	}
	if seed == "" {
		return TileGrid{}, nil, fmt.Errorf("mapgen: malformed seed: empty")
	}

	grid := TileGrid{Width: width, Height: height, Tiles: make([]TileKind, width*height)}
	rng := newLCG(seed)

	spawnCenters := [2][2]int{
		{int(0.15 * float64(width)), int(0.15 * float64(height))},
		{int(0.85 * float64(width)), int(0.85 * float64(height))},
	}

	maxAttempts := 2 * width * height
	attempt := 0
	for {
		attempt++
		fillTiles(grid, rng)
		forceSpawnSafety(grid, spawnCenters)
		if attempt >= maxAttempts || spawnAreasClear(grid, spawnCenters) {
			break
		}
	}

	nodes := placeResources(grid, rng)
	return grid, nodes, nil
}

func fillTiles(grid TileGrid, rng *lcg) {
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			grid.set(x, y, rollTerrain(rng))
		}
	}
}

func rollTerrain(rng *lcg) TileKind {
	roll := rng.intn(100)
	switch {
	case roll < 55:
		return TileGrass
	case roll < 65:
		return TileSand
	case roll < 72:
		return TileSwamp
	case roll < 82:
		return TileWater
	case roll < 90:
		return TileMountain
	case roll < 95:
		return TileGold
	default:
		return TileForest
	}
}

func forceSpawnSafety(grid TileGrid, centers [2][2]int) {
	half := spawnSquare / 2
	for _, c := range centers {
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				x, y := c[0]+dx, c[1]+dy
				if x < 0 || y < 0 || x >= grid.Width || y >= grid.Height {
					continue
				}
				grid.set(x, y, TileGrass)
			}
		}
	}
}

func spawnAreasClear(grid TileGrid, centers [2][2]int) bool {
	half := spawnSquare / 2
	for _, c := range centers {
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				x, y := c[0]+dx, c[1]+dy
				if grid.At(x, y) != TileGrass {
					return false
				}
			}
		}
	}
	return true
}

func placeResources(grid TileGrid, rng *lcg) []ResourceNode {
	nodes := make([]ResourceNode, 0, grid.Width*grid.Height/40)
	seq := 0
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			switch grid.At(x, y) {
			case TileGold:
				amount := rng.between(goldMin, goldMax)
				nodes = append(nodes, ResourceNode{
					ID: fmt.Sprintf("res-%d", seq), Kind: ResourceGold,
					TileX: x, TileY: y, Remaining: amount, Max: amount,
				})
				seq++
			case TileForest:
				amount := rng.between(forestMin, forestMax)
				nodes = append(nodes, ResourceNode{
					ID: fmt.Sprintf("res-%d", seq), Kind: ResourceWood,
					TileX: x, TileY: y, Remaining: amount, Max: amount,
				})
				seq++
			}
		}
	}
	return nodes
}
