package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"clashfront/server/internal/room"
	"clashfront/server/internal/sim"
)

func newTestServer(t *testing.T) (*httptest.Server, *room.Registry, *room.Room) {
	t.Helper()
	reg := room.NewRegistry(nil, nil)
	hub := NewHub(reg, nil)
	handler := NewHandler(reg, hub, nil, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	r := reg.Create("host", "Host", sim.DifficultyNormal, "seed")
	r.Join("guest", "Guest")
	return srv, reg, r
}

func dial(t *testing.T, baseURL, roomID, playerID, name string) *websocket.Conn {
	t.Helper()
	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	parsed.Scheme = "ws"
	q := parsed.Query()
	q.Set("room", roomID)
	q.Set("id", playerID)
	q.Set("name", name)
	parsed.RawQuery = q.Encode()
	conn, resp, err := websocket.DefaultDialer.Dial(parsed.String(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPingReceivesPong(t *testing.T) {
	srv, _, r := newTestServer(t)
	conn := dial(t, srv.URL, r.ID, "host", "Host")

	conn.WriteJSON(clientEnvelope{Type: KindPing, SentAt: time.Now().UnixMilli()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read pong: %v", err)
	}
	var out serverEnvelope
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("decode pong: %v", err)
	}
	if out.Type != KindPong {
		t.Fatalf("type = %v, want pong", out.Type)
	}
}

func TestActionBeforeMatchStartIsRejected(t *testing.T) {
	srv, _, r := newTestServer(t)
	conn := dial(t, srv.URL, r.ID, "host", "Host")

	conn.WriteJSON(clientEnvelope{Type: KindAction, Seq: 1, Action: sim.Action{Type: sim.ActionMove, UnitIDs: []string{"u1"}, TargetX: 10, TargetY: 10}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reject: %v", err)
	}
	var out serverEnvelope
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("decode reject: %v", err)
	}
	if out.Type != KindActionRejected {
		t.Fatalf("type = %v, want actionRejected", out.Type)
	}
}

func TestReadyThenStartBroadcastsGameStart(t *testing.T) {
	srv, _, r := newTestServer(t)
	hostConn := dial(t, srv.URL, r.ID, "host", "Host")
	guestConn := dial(t, srv.URL, r.ID, "guest", "Guest")

	hostConn.WriteJSON(clientEnvelope{Type: KindReady, Ready: true})
	guestConn.WriteJSON(clientEnvelope{Type: KindReady, Ready: true})
	time.Sleep(50 * time.Millisecond)

	if err := r.Start("host", false, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(r.Stop)

	hostConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := hostConn.ReadMessage()
	if err != nil {
		t.Fatalf("read gameStart: %v", err)
	}
	var out serverEnvelope
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("decode gameStart: %v", err)
	}
	if out.Type != KindGameStart {
		t.Fatalf("type = %v, want gameStart", out.Type)
	}
}
