package observability

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clashfront/server/internal/telemetry"
)

// Bounded label sets only: room/player-cardinality labels would let a
// hostile client blow up the metrics store, so every label here is a fixed
// enum (reason, category, method, status).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_tick_duration_seconds",
		Help:    "Time spent advancing one simulation tick.",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016},
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rooms_active",
		Help: "Number of rooms currently tracked by the registry.",
	})

	roomsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rooms_by_status",
		Help: "Number of rooms in each lifecycle status.",
	}, []string{"status"})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actions_total",
		Help: "Actions submitted, partitioned by validation outcome.",
	}, []string{"outcome"})

	cheatEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cheat_events_total",
		Help: "Anti-cheat observations, partitioned by severity.",
	}, []string{"severity"})

	connectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connections_rejected_total",
		Help: "Connections rejected before reaching game logic.",
	}, []string{"reason"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently open player WebSocket connections.",
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Recorder implements telemetry.Metrics on top of the package's Prometheus
// collectors, giving the rest of the server a narrow interface instead of a
// direct Prometheus dependency.
type Recorder struct{}

var _ telemetry.Metrics = Recorder{}

func (Recorder) IncCounter(name string, labels map[string]string) {
	switch name {
	case "actions_total":
		actionsTotal.WithLabelValues(labels["outcome"]).Inc()
	case "cheat_events_total":
		cheatEventsTotal.WithLabelValues(labels["severity"]).Inc()
	case "connections_rejected_total":
		connectionsRejected.WithLabelValues(labels["reason"]).Inc()
	}
}

func (Recorder) ObserveDuration(name string, labels map[string]string, seconds float64) {
	switch name {
	case "engine_tick_duration_seconds":
		tickDuration.Observe(seconds)
	case "http_request_duration_seconds":
		httpRequestDuration.WithLabelValues(labels["method"], labels["route"], labels["status"]).Observe(seconds)
	}
}

func (Recorder) SetGauge(name string, labels map[string]string, value float64) {
	switch name {
	case "rooms_active":
		roomsActive.Set(value)
	case "rooms_by_status":
		roomsByStatus.WithLabelValues(labels["status"]).Set(value)
	case "websocket_connections_active":
		wsConnectionsActive.Set(value)
	}
}

// RecordTick is a convenience wrapper timing one engine.Tick call:
//
//	stop := observability.RecordTick(metrics)
//	engine.Tick()
//	stop()
func RecordTick(m telemetry.Metrics) func() {
	start := time.Now()
	return func() {
		m.ObserveDuration("engine_tick_duration_seconds", nil, time.Since(start).Seconds())
	}
}

// DebugMux returns the metrics + optional pprof handler. Callers MUST bind
// this to loopback only (see Config.MetricsListenAddr) — it is never safe
// to expose on a public interface.
func DebugMux(cfg Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

// Serve starts the debug mux on cfg.MetricsListenAddr until ctx is
// cancelled. Errors other than a clean shutdown are returned.
func Serve(ctx context.Context, cfg Config) error {
	if cfg.MetricsListenAddr == "" {
		return nil
	}
	srv := &http.Server{Addr: cfg.MetricsListenAddr, Handler: DebugMux(cfg)}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
