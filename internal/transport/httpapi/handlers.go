package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clashfront/server/internal/room"
	"clashfront/server/internal/sim"
)

type handlers struct {
	registry *room.Registry
}

type errorBody struct {
	Ver   int    `json:"ver"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Ver: protocolVersion, Error: msg})
}

type roomSummary struct {
	ID         string `json:"id"`
	HostID     string `json:"hostId"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
	Size       int    `json:"size"`
}

func summarize(r *room.Room) roomSummary {
	return roomSummary{ID: r.ID, HostID: r.HostID(), Difficulty: string(r.Difficulty), Status: string(r.Status()), Size: r.Size()}
}

// handleListRooms serves GET /rooms: every room currently in the
// registry, for a lobby browser.
func (h *handlers) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.List()
	out := make([]roomSummary, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, summarize(rm))
	}
	writeJSON(w, http.StatusOK, out)
}

type createRoomRequest struct {
	HostID     string `json:"hostId"`
	HostName   string `json:"hostName"`
	Difficulty string `json:"difficulty"`
	Seed       string `json:"seed"`
}

// handleCreateRoom serves POST /rooms: makes a new waiting room with the
// requester as host.
func (h *handlers) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId is required")
		return
	}
	difficulty := sim.DifficultyNormal
	switch sim.Difficulty(req.Difficulty) {
	case sim.DifficultyEasy, sim.DifficultyNormal, sim.DifficultyHard:
		difficulty = sim.Difficulty(req.Difficulty)
	case "":
	default:
		writeError(w, http.StatusBadRequest, "unknown difficulty")
		return
	}
	rm := h.registry.Create(req.HostID, req.HostName, difficulty, req.Seed)
	writeJSON(w, http.StatusCreated, summarize(rm))
}

func (h *handlers) roomOr404(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	id := chi.URLParam(r, "id")
	rm, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown room")
		return nil, false
	}
	return rm, true
}

func (h *handlers) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.roomOr404(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(rm))
}

type joinRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

func (h *handlers) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.roomOr404(w, r)
	if !ok {
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	if err := rm.Join(req.PlayerID, req.Name); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summarize(rm))
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

func (h *handlers) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.roomOr404(w, r)
	if !ok {
		return
	}
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	h.registry.Leave(rm.ID, req.PlayerID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type readyRequest struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
}

func (h *handlers) handleReadyRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.roomOr404(w, r)
	if !ok {
		return
	}
	var req readyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	rm.Ready(req.PlayerID, req.Ready)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type startRequest struct {
	PlayerID string `json:"playerId"`
	WithAI   bool   `json:"withAI"`
	AIName   string `json:"aiName"`
}

func (h *handlers) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.roomOr404(w, r)
	if !ok {
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	if err := rm.Start(req.PlayerID, req.WithAI, req.AIName); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summarize(rm))
}
