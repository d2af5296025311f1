package domarch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/domarch/filter"
)

// MetricsCollector receives resolution measurements. The metric package
// provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordResolve is called after each query is resolved.
	// hits is the number of input hits, selected the architecture size,
	// duration the time taken, err is nil if successful.
	RecordResolve(queryID string, hits, selected int, duration time.Duration, err error)

	// RecordHitDropped is called for every hit excluded before resolution.
	RecordHitDropped(reason filter.Reason)

	// RecordRun is called once a stream or batch run finishes.
	RecordRun(queries int, duration time.Duration, err error)
}

// NoopMetricsCollector discards everything.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordResolve(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordHitDropped(filter.Reason)                       {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)                  {}

// BasicMetricsCollector keeps in-memory counters. The zero value is ready to use.
type BasicMetricsCollector struct {
	queries      atomic.Int64
	failed       atomic.Int64
	resolveNanos atomic.Int64
	slowestNanos atomic.Int64
	hitsIn       atomic.Int64
	hitsSelected atomic.Int64
	runs         atomic.Int64
	failedRuns   atomic.Int64

	mu      sync.Mutex
	dropped map[filter.Reason]int64
}

func (b *BasicMetricsCollector) RecordResolve(_ string, hits, selected int, duration time.Duration, err error) {
	b.queries.Add(1)
	if err != nil {
		b.failed.Add(1)
	}
	ns := duration.Nanoseconds()
	b.resolveNanos.Add(ns)
	for {
		cur := b.slowestNanos.Load()
		if ns <= cur || b.slowestNanos.CompareAndSwap(cur, ns) {
			break
		}
	}
	b.hitsIn.Add(int64(hits))
	b.hitsSelected.Add(int64(selected))
}

func (b *BasicMetricsCollector) RecordHitDropped(reason filter.Reason) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dropped == nil {
		b.dropped = make(map[filter.Reason]int64)
	}
	b.dropped[reason]++
}

func (b *BasicMetricsCollector) RecordRun(_ int, _ time.Duration, err error) {
	b.runs.Add(1)
	if err != nil {
		b.failedRuns.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (b *BasicMetricsCollector) Stats() BasicMetricsStats {
	s := BasicMetricsStats{
		Queries:       b.queries.Load(),
		FailedQueries: b.failed.Load(),
		Slowest:       time.Duration(b.slowestNanos.Load()),
		HitsIn:        b.hitsIn.Load(),
		HitsSelected:  b.hitsSelected.Load(),
		Runs:          b.runs.Load(),
		FailedRuns:    b.failedRuns.Load(),
		Dropped:       make(map[string]int64),
	}
	if s.Queries > 0 {
		s.MeanResolve = time.Duration(b.resolveNanos.Load() / s.Queries)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for reason, n := range b.dropped {
		s.Dropped[reason.String()] = n
		s.HitsDropped += n
	}
	return s
}

// BasicMetricsStats is a snapshot of a BasicMetricsCollector.
type BasicMetricsStats struct {
	Queries       int64
	FailedQueries int64
	MeanResolve   time.Duration
	Slowest       time.Duration
	HitsIn        int64
	HitsSelected  int64
	// HitsDropped sums Dropped.
	HitsDropped int64
	// Dropped counts dropped hits by filter.Reason name.
	Dropped    map[string]int64
	Runs       int64
	FailedRuns int64
}
