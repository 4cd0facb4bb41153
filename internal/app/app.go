// Package app is the composition root: it wires logging, persistence,
// the room registry, the websocket and REST transports, and the
// observability server into one running process. Grounded on the
// teacher's internal/app/app.go Run function.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"clashfront/server/internal/observability"
	"clashfront/server/internal/persistence"
	"clashfront/server/internal/room"
	"clashfront/server/internal/telemetry"
	"clashfront/server/internal/transport/httpapi"
	"clashfront/server/internal/transport/ws"
	"clashfront/server/logging"
	loggingSinks "clashfront/server/logging/sinks"
)

// Config carries the process's runtime knobs. Run fills in anything left
// zero from the environment, matching the teacher's env-var convention.
type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	HTTPAddr      string
	DatabaseDSN   string
	JSONLogPath   string

	sweepInterval time.Duration // test-only override; production uses one minute.
}

// Run starts the server with an env-derived Config and blocks until ctx
// is cancelled or a fatal error occurs. Matches the teacher's
// cmd/server/main.go call shape of a single context argument.
func Run(ctx context.Context) error {
	return RunWithConfig(ctx, Config{})
}

// RunWithConfig is Run with an explicit starting Config, for tests that
// need a throwaway port or an in-memory-only store.
func RunWithConfig(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = envOr("HTTP_ADDR", ":8080")
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	}
	if cfg.JSONLogPath == "" {
		cfg.JSONLogPath = os.Getenv("LOG_JSON_PATH")
	}
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprofTrace = value
		} else {
			telemetryLogger.Printf("app: invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}
	if cfg.Observability.MetricsListenAddr == "" {
		cfg.Observability.MetricsListenAddr = observability.DefaultConfig().MetricsListenAddr
	}
	if cfg.sweepInterval <= 0 {
		cfg.sweepInterval = time.Minute
	}

	router, err := buildLoggingRouter(cfg)
	if err != nil {
		return fmt.Errorf("app: build logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("app: close logging router: %v", cerr)
		}
	}()

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("app: build persistence store: %w", err)
	}

	registry := room.NewRegistry(nil, router)
	registry.SetStore(store)
	hub := ws.NewHub(registry, router)
	registry.SetBroadcaster(hub)
	if err := registry.RestoreMetadata(ctx); err != nil {
		telemetryLogger.Printf("app: restore room metadata: %v", err)
	}

	sweepStop := make(chan struct{})
	go runSweeper(registry, cfg.sweepInterval, sweepStop)
	defer close(sweepStop)

	wsHandler := ws.NewHandler(registry, hub, router, ws.HandlerConfig{Logger: log.Default()})
	apiRouter := httpapi.NewRouter(httpapi.Config{
		Registry:  registry,
		WSHandler: wsHandler.Handle,
	})

	metricsCtx, cancelMetrics := context.WithCancel(ctx)
	defer cancelMetrics()
	go func() {
		if err := observability.Serve(metricsCtx, cfg.Observability); err != nil {
			telemetryLogger.Printf("app: observability server: %v", err)
		}
	}()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiRouter}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	telemetryLogger.Printf("app: listening on %s", cfg.HTTPAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: http server: %w", err)
	}
}

func buildLoggingRouter(cfg Config) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	}
	if cfg.JSONLogPath != "" {
		f, err := os.OpenFile(cfg.JSONLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json log path %q: %w", cfg.JSONLogPath, err)
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(f, logConfig.JSON.FlushInterval)})
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
	}
	return logging.NewRouter(logging.SystemClock{}, logConfig, named)
}

func buildStore(cfg Config) (persistence.RoomMetadataStore, error) {
	if cfg.DatabaseDSN == "" {
		return persistence.NewInMemoryStore(), nil
	}
	return persistence.OpenGormStore(cfg.DatabaseDSN)
}

func runSweeper(registry *room.Registry, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			registry.Sweep()
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
