package ws

import (
	"context"
	"sync"

	"clashfront/server/internal/room"
	"clashfront/server/internal/snapshot"
	"clashfront/server/logging"
	"clashfront/server/logging/network"
)

// Hub tracks the live connection for every player in every room and
// implements room.Broadcaster, delivering snapshots/game-over/disconnect
// notices back out over each player's socket. Grounded on the teacher's
// hub.go player-set bookkeeping, split from one always-on world into a
// registry of per-room connection sets.
type Hub struct {
	registry  *room.Registry
	publisher logging.Publisher

	mu    sync.Mutex
	conns map[string]map[string]*conn // roomID -> playerID -> conn
}

// NewHub wires a Hub to the room registry it broadcasts on behalf of.
func NewHub(registry *room.Registry, pub logging.Publisher) *Hub {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Hub{registry: registry, publisher: pub, conns: make(map[string]map[string]*conn)}
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[c.roomID]
	if !ok {
		set = make(map[string]*conn)
		h.conns[c.roomID] = set
	}
	set[c.playerID] = c
}

func (h *Hub) remove(roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[roomID]
	if !ok {
		return
	}
	delete(set, playerID)
	if len(set) == 0 {
		delete(h.conns, roomID)
	}
}

func (h *Hub) get(roomID, playerID string) (*conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[roomID]
	if !ok {
		return nil, false
	}
	c, ok := set[playerID]
	return c, ok
}

// BroadcastSnapshot implements room.Broadcaster: snap is already filtered
// for playerID by internal/snapshot, so this only needs to route it to
// that one connection.
func (h *Hub) BroadcastSnapshot(roomID, playerID string, snap snapshot.Snapshot) {
	c, ok := h.get(roomID, playerID)
	if !ok {
		return
	}
	if err := c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindSnapshot, Snapshot: snap}); err != nil {
		h.disconnect(roomID, playerID, "write failed")
	}
}

// BroadcastGameStart implements room.Broadcaster, fanning out to every
// connection currently in roomID once the host starts the match.
func (h *Hub) BroadcastGameStart(roomID string) {
	h.mu.Lock()
	set := h.conns[roomID]
	targets := make([]*conn, 0, len(set))
	for _, c := range set {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	msg := serverEnvelope{Ver: ProtocolVersion, Type: KindGameStart}
	for _, c := range targets {
		_ = c.writeJSON(msg)
	}
}

// BroadcastGameOver implements room.Broadcaster, fanning out to every
// connection currently in roomID. reason is the win arbiter's textual
// verdict (spec.md §4.F: "<name> wins by elimination" or "draw").
func (h *Hub) BroadcastGameOver(roomID, winner, reason string) {
	h.mu.Lock()
	set := h.conns[roomID]
	targets := make([]*conn, 0, len(set))
	for _, c := range set {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	msg := serverEnvelope{Ver: ProtocolVersion, Type: KindGameOver, WinnerID: winner, Reason: reason}
	for _, c := range targets {
		_ = c.writeJSON(msg)
	}
}

// Disconnect implements room.Broadcaster: force-closes playerID's socket
// in roomID from the server side rather than waiting for the socket to
// close first. The room package does not call it; grace window
// expiry removes the member without touching the socket.
func (h *Hub) Disconnect(roomID, playerID string, reason string) {
	h.disconnect(roomID, playerID, reason)
}

func (h *Hub) disconnect(roomID, playerID, reason string) {
	c, ok := h.get(roomID, playerID)
	if !ok {
		return
	}
	_ = c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindError, Reason: reason})
	c.close()
	h.remove(roomID, playerID)
	h.registry.Leave(roomID, playerID)
	network.Disconnected(context.Background(), h.publisher,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		network.DisconnectedPayload{Reason: reason})
}
