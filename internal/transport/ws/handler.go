package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"clashfront/server/internal/room"
	"clashfront/server/internal/validate"
	"clashfront/server/logging"
	"clashfront/server/logging/cheat"
	"clashfront/server/logging/network"
)

// HandlerConfig configures Handler's non-essential dependencies.
type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades HTTP connections and runs each player's read/dispatch
// loop. Grounded on the teacher's internal/net/ws/handler.go Handle
// method, retargeted from the teacher's input/path/heartbeat message set
// to action/join/leave/ready/ping.
type Handler struct {
	registry  *room.Registry
	hub       *Hub
	publisher logging.Publisher
	logger    *log.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(registry *room.Registry, hub *Hub, pub logging.Publisher, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Handler{
		registry:  registry,
		hub:       hub,
		publisher: pub,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle is the http.HandlerFunc mounted at /ws by internal/transport/httpapi.
// The room and player must already exist (created/joined via the REST
// lobby endpoints); the socket itself only carries in-match traffic plus
// the join/ready/leave/ping control messages spec.md §6 assigns to it.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	playerID := r.URL.Query().Get("id")
	_ = r.URL.Query().Get("name")
	if roomID == "" || playerID == "" {
		http.Error(w, "missing room or id", http.StatusBadRequest)
		return
	}

	rm, ok := h.registry.Get(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws: upgrade failed for %s/%s: %v", roomID, playerID, err)
		return
	}

	c := newConn(roomID, playerID, wsConn)
	h.hub.add(c)
	rm.Ping(playerID)

	defer func() {
		h.hub.remove(roomID, playerID)
	}()

	for {
		_, payload, err := wsConn.ReadMessage()
		if err != nil {
			h.registry.Leave(roomID, playerID)
			return
		}

		var msg clientEnvelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			network.MalformedFrame(context.Background(), h.publisher,
				logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
				network.MalformedFramePayload{Reason: err.Error()})
			continue
		}

		h.dispatch(rm, c, msg)
	}
}

func (h *Handler) dispatch(rm *room.Room, c *conn, msg clientEnvelope) {
	ctx := context.Background()
	switch msg.Type {
	case KindJoin:
		if err := rm.Join(c.playerID, msg.Name); err != nil {
			_ = c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindError, Reason: err.Error()})
		}

	case KindLeave:
		h.registry.Leave(c.roomID, c.playerID)
		c.close()

	case KindReady:
		rm.Ready(c.playerID, msg.Ready)

	case KindPing:
		now := time.Now()
		rm.Ping(c.playerID)
		_ = c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindPong, ServerTime: now.UnixMilli(), ClientTime: msg.SentAt})

	case KindAction:
		h.dispatchAction(ctx, rm, c, msg)

	default:
		network.MalformedFrame(ctx, h.publisher,
			logging.EntityRef{ID: c.playerID, Kind: logging.EntityKindPlayer},
			network.MalformedFramePayload{Reason: "unknown message type"})
	}
}

func (h *Handler) dispatchAction(ctx context.Context, rm *room.Room, c *conn, msg clientEnvelope) {
	engine := rm.Engine()
	if engine == nil {
		h.rejectAction(ctx, c, msg, "match has not started")
		return
	}

	now := time.Now()
	submittedAt := now
	if msg.SentAt > 0 {
		submittedAt = time.UnixMilli(msg.SentAt)
	}

	limiter := rm.Limiters().Get(c.playerID)
	result := validate.Validate(engine.State(), limiter, c.playerID, msg.Action, submittedAt, now)
	if !result.OK {
		h.rejectAction(ctx, c, msg, result.Reason)
		return
	}

	if err := rm.Submit(ctx, c.playerID, msg.Action, msg.ClientTick); err != nil {
		h.rejectAction(ctx, c, msg, err.Error())
		return
	}

	if evt := rm.RateMonitor().RecordAndCheck(c.playerID); evt != nil {
		cheat.Observed(ctx, h.publisher, engine.State().Tick,
			logging.EntityRef{ID: c.playerID, Kind: logging.EntityKindPlayer},
			cheat.ObservationPayload{Rule: string(evt.Rule), Severity: cheat.Severity(evt.Severity), Detail: evt.Detail, Value: evt.Value, Expected: evt.Expected})
	}

	_ = c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindActionAccepted, Seq: msg.Seq, ActionType: string(msg.Action.Type)})
}

func (h *Handler) rejectAction(ctx context.Context, c *conn, msg clientEnvelope, reason string) {
	network.ActionRejected(ctx, h.publisher,
		logging.EntityRef{ID: c.playerID, Kind: logging.EntityKindPlayer},
		network.ActionRejectedPayload{ActionType: string(msg.Action.Type), Reason: reason})
	_ = c.writeJSON(serverEnvelope{Ver: ProtocolVersion, Type: KindActionRejected, Seq: msg.Seq, ActionType: string(msg.Action.Type), Reason: reason})
}
