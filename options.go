package vfsio

import (
	"log/slog"

	"github.com/hupe1980/vfsio/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
}

// Option configures Instrument.
type Option func(*options)

// WithMetricsCollector configures metrics collection for every operation.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vfsio.BasicMetricsCollector{}
//	fs := vfsio.Instrument(store.NewMemoryFS(), vfsio.WithMetricsCollector(metrics))
//	// ... use fs ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reads: %d, Avg latency: %dns\n", stats.ReadCount, stats.ReadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vfsio.NewJSONLogger(slog.LevelDebug)
//	fs := vfsio.Instrument(store.NewMemoryFS(), vfsio.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController limits open streams and stream throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
