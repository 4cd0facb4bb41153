// Package room implements the room lifecycle (waiting/playing/paused/
// ended), player join/leave/ready/start, host promotion, the 60-second
// grace window, and a background sweeper for stale waiting rooms
// (spec.md §4.I). Grounded on the teacher's hub.go Join/Subscribe/
// Disconnect player-set management, generalized to a per-room lifecycle
// with an explicit registry instead of one always-on world.
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"strings"

	"clashfront/server/internal/anticheat"
	"clashfront/server/internal/persistence"
	"clashfront/server/internal/ratelimit"
	"clashfront/server/internal/scheduler"
	"clashfront/server/internal/sim"
	"clashfront/server/internal/snapshot"
	"clashfront/server/logging"
	"clashfront/server/logging/cheat"
	"clashfront/server/logging/lifecycle"
	"clashfront/server/logging/network"
)

const (
	graceWindow     = 60 * time.Second
	pingTimeout     = 30 * time.Second
	waitingRoomTTL  = time.Hour
)

// Status mirrors sim.RoomStatus but is the type the transport/lobby
// layer reasons about before an Engine exists.
type Status = sim.RoomStatus

// Broadcaster delivers a snapshot or lifecycle message to every
// connected player in a room. internal/transport/ws implements this.
type Broadcaster interface {
	BroadcastSnapshot(roomID, playerID string, snap snapshot.Snapshot)
	BroadcastGameStart(roomID string)
	BroadcastGameOver(roomID string, winner string, reason string)
	Disconnect(roomID, playerID string, reason string)
}

// memberState tracks a room participant beyond what sim.Player needs.
type memberState struct {
	playerID    string
	lastPing    time.Time
	disconnected bool
	graceUntil  time.Time
}

// Room is one match, from lobby through simulation to teardown.
type Room struct {
	ID         string
	CreatedAt  time.Time
	Difficulty sim.Difficulty
	Seed       string

	mu       sync.Mutex
	status   Status
	engine   *sim.Engine
	sched    *scheduler.Scheduler
	limiters *ratelimit.Registry
	rateMon  *anticheat.ActionRateMonitor
	members  map[string]*memberState
	names    map[string]string
	hostID   string
	readySet map[string]bool
	queue    *actionQueue

	broadcaster Broadcaster
	publisher   logging.Publisher
	store       persistence.RoomMetadataStore
}

// New creates a waiting room with a host already joined.
func New(id, hostID, hostName string, difficulty sim.Difficulty, seed string, broadcaster Broadcaster, pub logging.Publisher) *Room {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	r := &Room{
		ID:          id,
		CreatedAt:   time.Now(),
		Difficulty:  difficulty,
		Seed:        seed,
		status:      sim.StatusWaiting,
		limiters:    ratelimit.NewRegistry(),
		rateMon:     anticheat.NewActionRateMonitor(),
		members:     make(map[string]*memberState),
		names:       map[string]string{hostID: hostName},
		hostID:      hostID,
		queue:       newActionQueue(),
		broadcaster: broadcaster,
		publisher:   pub,
	}
	r.members[hostID] = &memberState{playerID: hostID, lastPing: time.Now()}
	lifecycle.RoomCreated(context.Background(), pub,
		logging.EntityRef{ID: id, Kind: logging.EntityKindRoom},
		lifecycle.RoomCreatedPayload{Seed: seed, Difficulty: string(difficulty)})
	return r
}

// SetStore wires the metadata store in after construction, mirroring
// Registry.SetBroadcaster: the registry owns the store and hands it to
// each room it creates or restores.
func (r *Room) SetStore(s persistence.RoomMetadataStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = s
}

// Persist saves the room's current lobby metadata. Safe to call at any
// point in the lifecycle; a nil store makes it a no-op.
func (r *Room) Persist() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistLocked()
}

// persistLocked writes the room's lobby-visible state to the metadata
// store, best-effort (a save failure is not fatal to the lobby, since the
// live room is still authoritative; only a restart would notice). Caller
// must hold r.mu.
func (r *Room) persistLocked() {
	if r.store == nil {
		return
	}
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	_ = r.store.Save(context.Background(), persistence.RoomMetadata{
		RoomID:     r.ID,
		Seed:       r.Seed,
		Difficulty: string(r.Difficulty),
		Status:     string(r.status),
		HostID:     r.hostID,
		PlayerIDs:  strings.Join(ids, ","),
		CreatedAt:  r.CreatedAt,
	})
}

// PlayerIDs returns the current member ids, for callers building metadata
// or restoring a lobby's member list after a restart.
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// HostID reports the current host's player id (may change on promotion).
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.members {
		if !m.disconnected {
			n++
		}
	}
	return n
}

// Join appends a guest iff the room is waiting and has one seat free.
// Rejoin by the same id (still a member) is idempotent.
func (r *Room) Join(playerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, exists := r.members[playerID]; exists {
		if m.disconnected {
			m.disconnected = false
			m.graceUntil = time.Time{}
			m.lastPing = time.Now()
			r.resumeLocked()
		}
		r.persistLocked()
		return nil
	}
	if r.status != sim.StatusWaiting {
		return fmt.Errorf("room: not accepting joins")
	}
	if len(r.members) >= 2 {
		return fmt.Errorf("room: full")
	}
	r.members[playerID] = &memberState{playerID: playerID, lastPing: time.Now()}
	r.names[playerID] = name
	r.persistLocked()
	return nil
}

// Leave removes a player, promoting the next host if needed and opening
// a grace window if the match is in progress (spec.md §4.I).
func (r *Room) Leave(playerID string, engineHooks EngineHooks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == sim.StatusPlaying || r.status == sim.StatusPaused {
		m, ok := r.members[playerID]
		if ok {
			m.disconnected = true
			m.graceUntil = time.Now().Add(graceWindow)
			lifecycle.GraceStarted(context.Background(), r.publisher,
				logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer})
			if r.allDisconnectedLocked() {
				r.pauseLocked()
			}
			r.persistLocked()
			return
		}
	}

	delete(r.members, playerID)
	delete(r.names, playerID)
	lifecycle.PlayerLeft(context.Background(), r.publisher,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerLeftPayload{Reason: "left"})
	r.limiters.Remove(playerID)

	if len(r.members) == 0 {
		if r.store != nil {
			_ = r.store.Delete(context.Background(), r.ID)
		}
		if engineHooks.OnEmpty != nil {
			engineHooks.OnEmpty(r.ID)
		}
		return
	}
	if playerID == r.hostID {
		for id := range r.members {
			r.hostID = id
			lifecycle.PlayerPromoted(context.Background(), r.publisher,
				logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
				lifecycle.PlayerPromotedPayload{NewTeam: string(sim.TeamHost)})
			break
		}
	}
	r.persistLocked()
}

// EngineHooks lets the registry react to room-level lifecycle events
// without Room importing the registry (avoids an import cycle).
type EngineHooks struct {
	OnEmpty func(roomID string)
}

// allDisconnectedLocked reports whether every remaining member is
// currently disconnected (grace window open), i.e. no one is left to
// serve ticks for. Caller must hold r.mu.
func (r *Room) allDisconnectedLocked() bool {
	if len(r.members) == 0 {
		return false
	}
	for _, m := range r.members {
		if !m.disconnected {
			return false
		}
	}
	return true
}

// pauseLocked flips a playing room to paused and stops both scheduler
// drivers (spec.md §4.H: "while paused neither driver runs"), used once
// the last connected player drops so the room stops ticking for an empty
// room. Caller must hold r.mu.
func (r *Room) pauseLocked() {
	if r.status != sim.StatusPlaying {
		return
	}
	r.status = sim.StatusPaused
	if r.sched != nil {
		r.sched.Pause()
	}
	r.persistLocked()
	lifecycle.RoomPaused(context.Background(), r.publisher,
		logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRoom})
}

// resumeLocked restores a paused room to playing and restarts both
// scheduler drivers. Caller must hold r.mu.
func (r *Room) resumeLocked() {
	if r.status != sim.StatusPaused {
		return
	}
	r.status = sim.StatusPlaying
	if r.sched != nil {
		r.sched.Resume()
	}
	r.persistLocked()
	lifecycle.RoomResumed(context.Background(), r.publisher,
		logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRoom})
}

// CheckGrace expires disconnect grace windows for a paused room. The tick
// driver normally does this (see onTick's call to expireGraceLocked), but
// it does not run while paused, so a room left empty by disconnects would
// otherwise never forfeit. Called from Registry.Sweep once a minute. A
// forfeit resumes the scheduler so the win arbiter's next tick can pick
// up the elimination and end the match.
func (r *Room) CheckGrace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != sim.StatusPaused {
		return
	}
	before := len(r.members)
	r.expireGraceLocked()
	if len(r.members) != before {
		r.resumeLocked()
	}
}

// Ready toggles a player's ready flag. Readiness is tracked on the room
// itself since it applies before the engine (and its Player structs)
// exist.
func (r *Room) Ready(playerID string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[playerID]; !ok {
		return
	}
	if r.readySet == nil {
		r.readySet = make(map[string]bool)
	}
	r.readySet[playerID] = ready
}

// Start requires host, all-ready, and size >= 2 (or size 1 with an AI
// slot). It instantiates and initializes the engine and starts the
// scheduler (spec.md §4.I).
func (r *Room) Start(requesterID string, withAI bool, aiName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostID {
		return fmt.Errorf("room: only the host can start the match")
	}
	if r.status != sim.StatusWaiting {
		return fmt.Errorf("room: already started")
	}
	if len(r.members) < 2 && !withAI {
		return fmt.Errorf("room: need a second player or an AI opponent")
	}
	for id := range r.members {
		if !r.readySet[id] {
			return fmt.Errorf("room: not all players are ready")
		}
	}

	state := sim.NewGameState(r.Seed, r.Difficulty)
	for id := range r.members {
		team := sim.TeamGuest
		color := "#e05252"
		if id == r.hostID {
			team = sim.TeamHost
			color = "#4272d6"
		}
		state.AddPlayer(id, r.names[id], team, color)
	}
	if withAI {
		state.AddAI("ai", aiName, "#888888")
	}
	if err := state.Initialize(); err != nil {
		return fmt.Errorf("room: initialize match: %w", err)
	}

	r.engine = sim.NewEngine(state, r.publisher)
	r.status = sim.StatusPlaying

	r.sched = scheduler.New(sim.TickInterval, time.Second/sim.SnapshotRate, r.onTick, r.onSnapshot)
	r.sched.Start(context.Background())
	r.persistLocked()

	lifecycle.MatchStarted(context.Background(), r.publisher,
		logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRoom})
	if r.broadcaster != nil {
		r.broadcaster.BroadcastGameStart(r.ID)
	}
	return nil
}

func (r *Room) onTick(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		return
	}
	for _, cmd := range r.queue.drain(r.engine.State().Tick) {
		if err := r.engine.Submit(ctx, cmd); err != nil {
			network.ActionRejected(ctx, r.publisher,
				logging.EntityRef{ID: cmd.PlayerID, Kind: logging.EntityKindPlayer},
				network.ActionRejectedPayload{ActionType: string(cmd.Action.Type), Reason: err.Error()})
		}
	}
	r.expireGraceLocked()
	r.engine.Tick(ctx)
	r.runAntiCheatLocked(ctx)
	if r.engine.State().Ended {
		r.endLocked()
	}
}

// runAntiCheatLocked runs the stat-ratio and out-of-map passive checks
// against live entities once per tick (spec.md §4.E). Action rate is
// checked separately at submission time in internal/transport/ws via
// RateMonitor; anticheat.CheckResourceDrift has no caller, since no
// client message carries an asserted resource value. Every check only
// ever produces Events for the caller to log, never mutates state.
// Caller must hold r.mu.
func (r *Room) runAntiCheatLocked(ctx context.Context) {
	state := r.engine.State()
	tick := state.Tick
	for _, u := range state.Units {
		if u.HP <= 0 {
			continue
		}
		for _, evt := range anticheat.CheckUnitStats(u) {
			r.publishCheatEvent(ctx, tick, evt)
		}
		if evt := anticheat.CheckOutOfMap(u.Owner, u.ID, u.X, u.Y); evt != nil {
			r.publishCheatEvent(ctx, tick, *evt)
		}
	}
	for _, b := range state.Buildings {
		if b.HP <= 0 {
			continue
		}
		if evt := anticheat.CheckOutOfMap(b.Owner, b.ID, b.X, b.Y); evt != nil {
			r.publishCheatEvent(ctx, tick, *evt)
		}
	}
}

func (r *Room) publishCheatEvent(ctx context.Context, tick uint64, evt anticheat.Event) {
	cheat.Observed(ctx, r.publisher, tick,
		logging.EntityRef{ID: evt.PlayerID, Kind: logging.EntityKindPlayer},
		cheat.ObservationPayload{Rule: string(evt.Rule), Severity: cheat.Severity(evt.Severity), Detail: evt.Detail, Value: evt.Value, Expected: evt.Expected})
}

func (r *Room) onSnapshot(ctx context.Context) {
	r.mu.Lock()
	engine := r.engine
	broadcaster := r.broadcaster
	roomID := r.ID
	members := make([]string, 0, len(r.members))
	for id := range r.members {
		members = append(members, id)
	}
	r.mu.Unlock()

	if engine == nil || broadcaster == nil {
		return
	}
	now := time.Now().UnixMilli()
	for _, id := range members {
		snap := snapshot.Build(engine.State(), id, now, snapshot.Options{})
		broadcaster.BroadcastSnapshot(roomID, id, snap)
	}
}

func (r *Room) expireGraceLocked() {
	now := time.Now()
	for id, m := range r.members {
		if !m.disconnected || m.graceUntil.IsZero() {
			continue
		}
		if now.After(m.graceUntil) {
			if r.engine != nil {
				r.engine.Surrender(id)
			}
			lifecycle.PlayerLeft(context.Background(), r.publisher,
				logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
				lifecycle.PlayerLeftPayload{Reason: "grace_expired"})
			delete(r.members, id)
		}
	}
}

func (r *Room) endLocked() {
	r.status = sim.StatusEnded
	if r.sched != nil {
		r.sched.Stop()
	}
	if r.store != nil {
		_ = r.store.Delete(context.Background(), r.ID)
	}
	winner := r.engine.State().WinnerID
	reason := r.engine.State().WinReason
	if r.broadcaster != nil {
		r.broadcaster.BroadcastGameOver(r.ID, winner, reason)
	}
	lifecycle.MatchEnded(context.Background(), r.publisher,
		logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRoom},
		lifecycle.MatchEndedPayload{WinnerID: winner, Reason: reason})
}

func (r *Room) currentTick() uint64 {
	if r.engine == nil {
		return 0
	}
	return r.engine.State().Tick
}

// Ping updates lastPing and restores a grace-windowed player.
func (r *Room) Ping(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[playerID]
	if !ok {
		return
	}
	m.lastPing = time.Now()
	if m.disconnected {
		m.disconnected = false
		m.graceUntil = time.Time{}
		r.resumeLocked()
	}
}

// SweepDisconnects marks players with no ping in pingTimeout as
// disconnected, opening their grace window (spec.md §4.I).
func (r *Room) SweepDisconnects() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != sim.StatusPlaying {
		return
	}
	now := time.Now()
	for _, m := range r.members {
		if m.disconnected {
			continue
		}
		if now.Sub(m.lastPing) > pingTimeout {
			m.disconnected = true
			m.graceUntil = now.Add(graceWindow)
		}
	}
	if r.allDisconnectedLocked() {
		r.pauseLocked()
	}
}

// Expired reports whether a never-started room has outlived its TTL
// (spec.md §4.I background sweeper).
func (r *Room) Expired(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == sim.StatusWaiting && now.Sub(r.CreatedAt) > waitingRoomTTL
}

// Submit stages a validated action for the next tick the room reaches
// clientTick on. It never touches the engine directly: only the room's
// own tick goroutine (onTick) calls Engine.Submit, keeping Engine's
// single-writer contract intact even though Submit itself is called from
// per-connection goroutines.
func (r *Room) Submit(ctx context.Context, playerID string, action sim.Action, clientTick uint64) error {
	r.mu.Lock()
	started := r.engine != nil
	tick := r.currentTick()
	r.mu.Unlock()
	if !started {
		return fmt.Errorf("room: match has not started")
	}
	cmd := sim.Command{PlayerID: playerID, Action: action, OriginTick: tick, ClientTick: clientTick, SubmittedAt: time.Now().UnixMilli()}
	if !r.queue.push(cmd) {
		return fmt.Errorf("room: action queue full")
	}
	return nil
}

// Stop halts the tick/snapshot scheduler without transitioning status,
// used when a room is torn down (e.g. process shutdown, forced removal)
// rather than ending naturally via the win arbiter.
func (r *Room) Stop() {
	r.mu.Lock()
	sched := r.sched
	r.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

// Engine exposes the underlying engine for validators/anti-cheat that
// need read access to game state.
func (r *Room) Engine() *sim.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine
}

// Limiters exposes the per-player rate limiter registry.
func (r *Room) Limiters() *ratelimit.Registry { return r.limiters }

// RateMonitor exposes the anti-cheat action-rate monitor.
func (r *Room) RateMonitor() *anticheat.ActionRateMonitor { return r.rateMon }
