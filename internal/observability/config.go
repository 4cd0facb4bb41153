// Package observability wires Prometheus metrics and an optional
// localhost-only pprof server into the server, grounded on the retrieved
// fight-club example's internal/api/observability.go.
package observability

// Config captures opt-in observability toggles that wire into the server.
type Config struct {
	EnablePprofTrace bool
	// MetricsListenAddr is where the debug/metrics mux listens. It MUST be
	// loopback-only; nothing here is safe to expose publicly.
	MetricsListenAddr string
}

// DefaultConfig returns safe defaults: pprof disabled, metrics bound to
// loopback only.
func DefaultConfig() Config {
	return Config{
		EnablePprofTrace:  false,
		MetricsListenAddr: "127.0.0.1:6060",
	}
}
