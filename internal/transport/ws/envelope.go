// Package ws is the websocket transport adapter: one connection per
// player, framed JSON messages dispatched into internal/validate and
// internal/room. Grounded on the teacher's internal/net/ws/handler.go
// read/dispatch loop and hub.go's per-subscriber write lock, retargeted
// from the teacher's input/path/action/heartbeat message set to spec.md
// §6/§4.J's action/join/leave/ready/ping <-> snapshot/actionAccepted/
// actionRejected/gameStart/gameOver/error/pong set.
package ws

import "clashfront/server/internal/sim"

// ProtocolVersion is carried on every server->client message, following
// the teacher's Ver field convention so clients can detect skew.
const ProtocolVersion = 1

// Client->server message kinds (spec.md §6).
const (
	KindAction ClientKind = "action"
	KindJoin   ClientKind = "join"
	KindLeave  ClientKind = "leave"
	KindReady  ClientKind = "ready"
	KindPing   ClientKind = "ping"
)

// ClientKind names an inbound frame's type field.
type ClientKind string

// Server->client message kinds (spec.md §6).
const (
	KindSnapshot        ServerKind = "snapshot"
	KindActionAccepted  ServerKind = "actionAccepted"
	KindActionRejected  ServerKind = "actionRejected"
	KindGameStart       ServerKind = "gameStart"
	KindGameOver        ServerKind = "gameOver"
	KindError           ServerKind = "error"
	KindPong            ServerKind = "pong"
)

// ServerKind names an outbound frame's type field.
type ServerKind string

// clientEnvelope is the wire shape of every inbound frame. Only the
// fields relevant to Type are populated by a well-behaved client; unused
// fields are left zero.
type clientEnvelope struct {
	Ver  int        `json:"ver,omitempty"`
	Type ClientKind `json:"type"`
	Seq  uint64     `json:"seq,omitempty"`

	// action. ClientTick is the tick the client intends this action to take
	// effect on; the scheduler holds it back until the room reaches that
	// tick rather than applying it immediately on arrival (spec.md §4.H).
	Action     sim.Action `json:"action,omitempty"`
	ClientTick uint64     `json:"clientTick,omitempty"`

	// join
	Name       string `json:"name,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	WithAI     bool   `json:"withAI,omitempty"`
	AIName     string `json:"aiName,omitempty"`

	// ready
	Ready bool `json:"ready,omitempty"`

	// ping
	SentAt int64 `json:"sentAt,omitempty"`
}

// serverEnvelope is the wire shape of every outbound frame.
type serverEnvelope struct {
	Ver  int        `json:"ver"`
	Type ServerKind `json:"type"`
	Seq  uint64     `json:"seq,omitempty"`

	Snapshot any `json:"snapshot,omitempty"`

	ActionType string `json:"actionType,omitempty"`
	Reason     string `json:"reason,omitempty"`

	WinnerID string `json:"winnerId,omitempty"`

	ServerTime int64 `json:"serverTime,omitempty"`
	ClientTime int64 `json:"clientTime,omitempty"`
}
