// Package telemetry decouples game components from a concrete logger or
// metrics backend so tests can supply fakes without importing Prometheus.
package telemetry

import "log"

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the counters/gauges components need without binding them
// to Prometheus directly. internal/observability implements this interface
// on top of a prometheus.Registry.
type Metrics interface {
	IncCounter(name string, labels map[string]string)
	ObserveDuration(name string, labels map[string]string, seconds float64)
	SetGauge(name string, labels map[string]string, value float64)
}

// NopMetrics discards every recording; useful in tests.
type NopMetrics struct{}

func (NopMetrics) IncCounter(string, map[string]string)               {}
func (NopMetrics) ObserveDuration(string, map[string]string, float64) {}
func (NopMetrics) SetGauge(string, map[string]string, float64)        {}
