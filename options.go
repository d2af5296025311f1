package domarch

import (
	"log/slog"
	"os"

	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/resource"
	"github.com/hupe1980/domarch/score"
	"github.com/hupe1980/domarch/trim"
)

type options struct {
	trim             trim.Spec
	filter           filter.Spec
	score            score.Spec
	mode             resolve.Mode
	workers          int
	queriesPerSecond float64
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithTrim configures boundary trimming. The zero Spec disables trimming.
func WithTrim(spec trim.Spec) Option {
	return func(o *options) {
		o.trim = spec
	}
}

// WithFilter configures hit filtering.
//
// Start from filter.DefaultSpec; the zero Spec drops every hit by evalue.
func WithFilter(spec filter.Spec) Option {
	return func(o *options) {
		o.filter = spec
	}
}

// WithScore configures score adjustment and the CATH-Gene3D rules.
func WithScore(spec score.Spec) Option {
	return func(o *options) {
		o.score = spec
	}
}

// WithMode selects optimal or naive-greedy resolution.
func WithMode(mode resolve.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithWorkers sets how many queries are resolved concurrently.
// n <= 0 uses runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithQueriesPerSecond throttles how fast queries are scheduled.
// Zero disables throttling. Ignored when WithResourceController is also given.
func WithQueriesPerSecond(qps float64) Option {
	return func(o *options) {
		o.queriesPerSecond = qps
	}
}

// WithResourceController shares a resource.Controller between engines.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   512 << 20,
//	    MaxInFlightQueries: 64,
//	})
//	eng, _ := domarch.New(domarch.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector reports per-query and per-run measurements to mc.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
//
//	logger := domarch.NewWriterLogger(os.Stderr, domarch.LogJSON, slog.LevelInfo)
//	eng, _ := domarch.New(domarch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel logs text records at or above level to stderr.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewWriterLogger(os.Stderr, LogText, level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		trim:             trim.NoTrim,
		filter:           filter.DefaultSpec(),
		mode:             resolve.Optimal,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
