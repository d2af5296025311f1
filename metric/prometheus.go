package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/filter"
)

// Namespace prefixes every metric name.
const Namespace = "domarch"

var _ domarch.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements domarch.MetricsCollector with Prometheus
// histograms and counters.
type PrometheusCollector struct {
	resolveLatency *prometheus.HistogramVec
	hitsIn         prometheus.Counter
	hitsSelected   prometheus.Counter
	hitsDropped    *prometheus.CounterVec
	runLatency     *prometheus.HistogramVec
	queries        prometheus.Counter
}

// NewPrometheusCollector creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	pc := &PrometheusCollector{
		resolveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time taken to resolve one query.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"status"}),
		hitsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "hits_resolved_total",
			Help:      "Hits that reached the optimizer.",
		}),
		hitsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "hits_selected_total",
			Help:      "Hits chosen for an architecture.",
		}),
		hitsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "hits_dropped_total",
			Help:      "Hits excluded before resolution, by reason.",
		}, []string{"reason"}),
		runLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of batch and stream runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queries_total",
			Help:      "Queries resolved by completed runs.",
		}),
	}

	for _, c := range []prometheus.Collector{
		pc.resolveLatency, pc.hitsIn, pc.hitsSelected, pc.hitsDropped, pc.runLatency, pc.queries,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Expose every reason at zero so rates work from the first scrape.
	for _, r := range filter.Reasons() {
		pc.hitsDropped.WithLabelValues(r.String())
	}
	return pc, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (pc *PrometheusCollector) RecordResolve(_ string, hits, selected int, d time.Duration, err error) {
	pc.resolveLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	pc.hitsIn.Add(float64(hits))
	pc.hitsSelected.Add(float64(selected))
}

func (pc *PrometheusCollector) RecordHitDropped(reason filter.Reason) {
	pc.hitsDropped.WithLabelValues(reason.String()).Inc()
}

func (pc *PrometheusCollector) RecordRun(queries int, d time.Duration, err error) {
	pc.runLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	pc.queries.Add(float64(queries))
}
