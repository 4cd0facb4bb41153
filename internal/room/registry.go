package room

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"clashfront/server/internal/persistence"
	"clashfront/server/internal/sim"
	"clashfront/server/logging"
)

// Registry is the process-wide roomId -> Room map. Its own lock is held
// only for lookup/insert/remove; simulation runs outside it entirely
// (spec.md §9's "shared mutable module-level maps -> single registry
// object with per-room locks" design note).
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	broadcaster Broadcaster
	publisher   logging.Publisher
	store       persistence.RoomMetadataStore

	nextID uint64
}

func NewRegistry(broadcaster Broadcaster, pub logging.Publisher) *Registry {
	return &Registry{
		rooms:       make(map[string]*Room),
		broadcaster: broadcaster,
		publisher:   pub,
	}
}

// Create makes a new waiting room and registers it.
func (reg *Registry) Create(hostID, hostName string, difficulty sim.Difficulty, seed string) *Room {
	reg.mu.Lock()
	reg.nextID++
	id := fmt.Sprintf("room-%d", reg.nextID)
	reg.mu.Unlock()

	r := New(id, hostID, hostName, difficulty, seed, reg.broadcaster, reg.publisher)
	r.SetStore(reg.store)
	r.Persist()

	reg.mu.Lock()
	reg.rooms[id] = r
	reg.mu.Unlock()
	return r
}

// SetStore wires the metadata store in after construction, mirroring
// SetBroadcaster. Rooms created afterward pick it up automatically;
// already-registered rooms would need SetStore called on them directly,
// which does not happen today since SetStore is called once at boot
// before any room exists.
func (reg *Registry) SetStore(s persistence.RoomMetadataStore) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.store = s
}

// RestoreMetadata recreates waiting rooms from persisted metadata after a
// process restart (spec.md §9(a)). Only rooms still in the "waiting"
// lobby state are recoverable: a room that had already started has live
// simulation state (units, buildings, resources) that was never
// persisted, so it cannot be resumed and its metadata is discarded
// instead. Restored rooms keep their original id and seed so players
// reconnecting with the same room code land back in the same lobby, but
// member display names are not recovered (only ids are persisted) and
// each restored member shows up unready.
func (reg *Registry) RestoreMetadata(ctx context.Context) error {
	if reg.store == nil {
		return nil
	}
	rows, err := reg.store.List(ctx)
	if err != nil {
		return fmt.Errorf("room: list persisted metadata: %w", err)
	}
	for _, row := range rows {
		if row.Status != string(sim.StatusWaiting) {
			_ = reg.store.Delete(ctx, row.RoomID)
			continue
		}
		ids := strings.Split(row.PlayerIDs, ",")
		if len(ids) == 0 || ids[0] == "" {
			_ = reg.store.Delete(ctx, row.RoomID)
			continue
		}
		r := New(row.RoomID, row.HostID, "", sim.Difficulty(row.Difficulty), row.Seed, reg.broadcaster, reg.publisher)
		for _, id := range ids {
			if id == row.HostID {
				continue
			}
			_ = r.Join(id, "")
		}
		r.SetStore(reg.store)

		reg.mu.Lock()
		reg.rooms[row.RoomID] = r
		reg.mu.Unlock()
	}
	return nil
}

// SetBroadcaster wires the transport layer in after construction, breaking
// the Registry<->Broadcaster initialization cycle (the websocket hub needs
// a *Registry to route disconnects through, and the Registry needs a
// Broadcaster to hand new rooms).
func (reg *Registry) SetBroadcaster(b Broadcaster) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.broadcaster = b
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[id]
	return r, ok
}

func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	store := reg.store
	delete(reg.rooms, id)
	reg.mu.Unlock()
	if store != nil {
		_ = store.Delete(context.Background(), id)
	}
}

// List returns every currently registered room. Safe for concurrent use;
// the returned slice is a snapshot.
func (reg *Registry) List() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r)
	}
	return out
}

// hooks wires a Room's Leave call back into the registry so an emptied
// room gets removed without Room importing Registry.
func (reg *Registry) hooks() EngineHooks {
	return EngineHooks{OnEmpty: reg.Remove}
}

// Leave removes playerID from roomID via that room's own Leave, wiring
// the empty-room cleanup hook.
func (reg *Registry) Leave(roomID, playerID string) {
	r, ok := reg.Get(roomID)
	if !ok {
		return
	}
	r.Leave(playerID, reg.hooks())
}

// Sweep runs the periodic maintenance pass: expire disconnect grace
// windows/pings, and delete never-started rooms older than their TTL
// (spec.md §4.I background sweeper). Intended to be called from a
// ticker in internal/app once a minute.
func (reg *Registry) Sweep() {
	now := time.Now()
	for _, r := range reg.List() {
		r.SweepDisconnects()
		r.CheckGrace()
		r.rateMon.ResetWindow()
		if r.Expired(now) {
			reg.Remove(r.ID)
		}
	}
}
