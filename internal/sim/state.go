package sim

import (
	"fmt"

	"clashfront/server/internal/mapgen"
)

// RoomStatus mirrors the room lifecycle state the engine needs to know
// about to decide whether it should be ticking at all (spec.md §4.I).
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
	StatusPaused  RoomStatus = "paused"
	StatusEnded   RoomStatus = "ended"
)

// GameState is the complete, authoritative state of one match (spec.md
// §3). It is mutated exclusively by Engine methods; nothing outside this
// package should hold a *GameState across a tick boundary without owning
// its room's single-writer lock.
type GameState struct {
	Tick   uint64
	Status RoomStatus

	Seed       string
	Difficulty Difficulty

	Grid      mapgen.TileGrid
	Discovered map[string]map[int]struct{} // playerID -> set of tileY*width+tileX

	Players map[string]*Player
	Units   map[string]*Unit
	Buildings map[string]*Building
	Resources map[string]*ResourceNode
	Projectiles map[string]*Projectile

	WinnerID string
	WinReason string
	Ended    bool

	idCounter uint64
}

// nextID allocates an entity ID scoped to this GameState, so two engines
// running in the same process (two rooms, or a replay/verification
// harness) each produce their own ID sequence independent of the other's
// history (spec.md §8 determinism: identical (seed, action sequence)
// must yield identical snapshots).
func (s *GameState) nextID(prefix string) string {
	s.idCounter++
	return fmt.Sprintf("%s-%d", prefix, s.idCounter)
}

// NewGameState constructs an empty, unseeded state. Call Initialize once
// every player has been added.
func NewGameState(seed string, difficulty Difficulty) *GameState {
	return &GameState{
		Status:      StatusWaiting,
		Seed:        seed,
		Difficulty:  difficulty,
		Discovered:  make(map[string]map[int]struct{}),
		Players:     make(map[string]*Player),
		Units:       make(map[string]*Unit),
		Buildings:   make(map[string]*Building),
		Resources:   make(map[string]*ResourceNode),
		Projectiles: make(map[string]*Projectile),
	}
}

// AddPlayer registers a human participant. Must be called before
// Initialize.
func (s *GameState) AddPlayer(id, name string, team Team, color string) *Player {
	p := &Player{
		ID:    id,
		Name:  name,
		Team:  team,
		Color: color,
		Res:   Resources{Gold: 200, Wood: 100, Supply: 0, MaxSupply: MaxSupply(1, 0)},
	}
	s.Players[id] = p
	s.Discovered[id] = make(map[int]struct{})
	return p
}

// AddAI registers the AI opponent as a regular player occupying the
// second spawn slot (spec.md §4.C treats the AI as a player with a
// scripted command source).
func (s *GameState) AddAI(id, name, color string) *Player {
	p := s.AddPlayer(id, name, TeamAI, color)
	p.IsAI = true
	return p
}

// Initialize generates the map and spawns each player's starting base and
// workers (spec.md §4.A/§4.C). It must run exactly once, after every
// player has been added.
func (s *GameState) Initialize() error {
	grid, resources, err := mapgen.Generate(MapWidth, MapHeight, s.Seed)
	if err != nil {
		return fmt.Errorf("sim: initialize map: %w", err)
	}
	s.Grid = grid
	for _, rn := range resources {
		s.Resources[rn.ID] = &ResourceNode{
			ID:        rn.ID,
			Kind:      rn.Kind,
			X:         (float64(rn.TileX) + 0.5) * TileSize,
			Y:         (float64(rn.TileY) + 0.5) * TileSize,
			Remaining: rn.Remaining,
			Max:       rn.Max,
		}
	}

	spawns := s.spawnPoints()
	i := 0
	for _, p := range s.orderedPlayers() {
		sp := spawns[i%len(spawns)]
		i++
		s.spawnStartingForce(p, sp)
	}
	s.Status = StatusPlaying
	return nil
}

// orderedPlayers returns players in a stable order (host, guest, ai) so
// spawn assignment is deterministic for a given seed.
func (s *GameState) orderedPlayers() []*Player {
	var host, guest, ai *Player
	for _, p := range s.Players {
		switch p.Team {
		case TeamHost:
			host = p
		case TeamGuest:
			guest = p
		case TeamAI:
			ai = p
		}
	}
	var out []*Player
	for _, p := range []*Player{host, guest, ai} {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (s *GameState) spawnPoints() []Point {
	return []Point{
		{X: 0.15 * WorldPixelWidth, Y: 0.15 * WorldPixelHeight},
		{X: 0.85 * WorldPixelWidth, Y: 0.85 * WorldPixelHeight},
	}
}

func (s *GameState) spawnStartingForce(p *Player, at Point) {
	base := &Building{
		ID:       s.nextID("building"),
		Owner:    p.ID,
		X:        at.X,
		Y:        at.Y,
		Variant:  BuildingBase,
		Progress: 100,
	}
	stats := BuildingCatalog[BuildingBase]
	base.MaxHP = stats.MaxHP
	base.HP = stats.MaxHP
	base.Footprint = stats.Footprint
	s.Buildings[base.ID] = base

	for i := 0; i < 3; i++ {
		offsetX := float64(i-1) * 30
		u := &Unit{
			ID:      s.nextID("unit"),
			Owner:   p.ID,
			X:       at.X + offsetX,
			Y:       at.Y + 60,
			Variant: UnitWorker,
			State:   CommandIdle,
		}
		applyUnitBaseline(u)
		s.Units[u.ID] = u
	}
}

func applyUnitBaseline(u *Unit) {
	stats := UnitCatalog[u.Variant]
	u.MaxHP = stats.MaxHP
	u.HP = stats.MaxHP
	u.Size = stats.Size
	u.AttackRange = stats.AttackRange
	u.AttackDamage = stats.AttackDamage
	u.Cooldown = stats.Cooldown
	u.MoveSpeed = stats.MoveSpeed
	u.Armor = stats.Armor
}
