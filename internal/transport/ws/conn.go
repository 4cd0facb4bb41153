package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// conn wraps one player's socket with a write mutex, mirroring the
// teacher's hub.go subscriber type: gorilla's Conn forbids concurrent
// writers, but the snapshot broadcaster and the per-connection read loop
// both write to it.
type conn struct {
	playerID string
	roomID   string

	mu sync.Mutex
	ws *websocket.Conn
}

func newConn(roomID, playerID string, ws *websocket.Conn) *conn {
	return &conn{roomID: roomID, playerID: playerID, ws: ws}
}

func (c *conn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.Close()
}
