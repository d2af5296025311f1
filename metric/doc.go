// Package metric exports engine metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	pc, err := metric.NewPrometheusCollector(reg)
//	if err != nil { ... }
//	eng, _ := domarch.New(domarch.WithMetricsCollector(pc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metric
