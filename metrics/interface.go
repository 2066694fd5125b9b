package metrics

// MetricsCollector creates application metrics registered on the
// application registry with the service label applied.
//
// Creating two metrics with the same name panics, as prometheus.MustRegister
// does.
type MetricsCollector interface {
	CreateCounter(name, help string, labels []string) Counter
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram
	CreateGauge(name, help string, labels []string) Gauge
	CreateSummary(name, help string, labels []string, objectives map[float64]float64) Summary
}
