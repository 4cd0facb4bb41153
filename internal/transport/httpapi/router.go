// Package httpapi is the REST lobby surface: create/list/join/leave/
// ready/start a room before its websocket connections take over
// (SPEC_FULL.md §4.J AMBIENT). Grounded on the retrieved fight-club
// example's internal/api/router.go NewRouter, which composes
// chi/middleware.Logger+Recoverer, go-chi/cors, and a per-IP
// golang.org/x/time/rate limiter the same way.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"clashfront/server/internal/room"
)

// protocolVersion is carried on error bodies so clients can detect skew,
// matching internal/transport/ws.ProtocolVersion.
const protocolVersion = 1

// Config carries NewRouter's dependencies and optional overrides.
type Config struct {
	Registry *room.Registry

	// WSHandler, when set, is mounted at /ws so a single process serves
	// both REST and websocket traffic.
	WSHandler http.HandlerFunc

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string
	DisableLogging  bool
}

// NewRouter builds the lobby HTTP router. It has no side effects beyond
// starting the rate limiter's cleanup goroutine (if one isn't supplied),
// so it is safe to use directly with httptest.NewServer.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	limiter := cfg.RateLimiter
	if limiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		limiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(limiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &handlers{registry: cfg.Registry}

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.handleListRooms)
		r.Post("/", h.handleCreateRoom)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetRoom)
			r.Post("/join", h.handleJoinRoom)
			r.Post("/leave", h.handleLeaveRoom)
			r.Post("/ready", h.handleReadyRoom)
			r.Post("/start", h.handleStartRoom)
		})
	})

	if cfg.WSHandler != nil {
		r.Get("/ws", cfg.WSHandler)
	}

	return r
}
