package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clashfront/server/internal/room"
)

func newTestRouter(t *testing.T) (*httptest.Server, *room.Registry) {
	t.Helper()
	reg := room.NewRegistry(nil, nil)
	router := NewRouter(Config{
		Registry:        reg,
		DisableLogging:  true,
		RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestCreateAndListRooms(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp := postJSON(t, srv.URL+"/rooms/", createRoomRequest{HostID: "host", HostName: "Host", Difficulty: "hard"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created roomSummary
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Difficulty != "hard" || created.Status != "waiting" {
		t.Fatalf("unexpected summary: %+v", created)
	}

	listResp, err := http.Get(srv.URL + "/rooms/")
	if err != nil {
		t.Fatalf("GET /rooms: %v", err)
	}
	defer listResp.Body.Close()
	var rooms []roomSummary
	if err := json.NewDecoder(listResp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != created.ID {
		t.Fatalf("rooms = %+v, want one room matching %q", rooms, created.ID)
	}
}

func TestJoinReadyStartFlow(t *testing.T) {
	srv, reg := newTestRouter(t)

	created := postJSON(t, srv.URL+"/rooms/", createRoomRequest{HostID: "host", HostName: "Host"})
	var summary roomSummary
	json.NewDecoder(created.Body).Decode(&summary)
	created.Body.Close()

	joinResp := postJSON(t, srv.URL+"/rooms/"+summary.ID+"/join", joinRequest{PlayerID: "guest", Name: "Guest"})
	joinResp.Body.Close()
	if joinResp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d", joinResp.StatusCode)
	}

	for _, id := range []string{"host", "guest"} {
		resp := postJSON(t, srv.URL+"/rooms/"+summary.ID+"/ready", readyRequest{PlayerID: id, Ready: true})
		resp.Body.Close()
	}

	startResp := postJSON(t, srv.URL+"/rooms/"+summary.ID+"/start", startRequest{PlayerID: "host"})
	defer startResp.Body.Close()
	if startResp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", startResp.StatusCode)
	}

	rm, ok := reg.Get(summary.ID)
	if !ok {
		t.Fatal("room vanished from registry")
	}
	t.Cleanup(rm.Stop)
}

func TestStartRejectsWhenNotAllReady(t *testing.T) {
	srv, _ := newTestRouter(t)

	created := postJSON(t, srv.URL+"/rooms/", createRoomRequest{HostID: "host", HostName: "Host"})
	var summary roomSummary
	json.NewDecoder(created.Body).Decode(&summary)
	created.Body.Close()

	postJSON(t, srv.URL+"/rooms/"+summary.ID+"/join", joinRequest{PlayerID: "guest", Name: "Guest"}).Body.Close()

	startResp := postJSON(t, srv.URL+"/rooms/"+summary.ID+"/start", startRequest{PlayerID: "host"})
	defer startResp.Body.Close()
	if startResp.StatusCode != http.StatusConflict {
		t.Fatalf("start status = %d, want 409", startResp.StatusCode)
	}
}
