// Package metrics exposes Prometheus metrics for oboe.
//
// Two endpoints are served: the system endpoint (default :9090) with Go
// runtime, process and build info collectors, and the application endpoint
// (default :9091) with the oboe instruments:
//
//	oboe_sample_decisions_total{layer,source,sampled}
//	oboe_sample_rate{layer}
//	oboe_settings_rebuilds_total
//	oboe_reports_total{reporter,result}
//	oboe_report_bytes_total{reporter}
//	oboe_report_duration_seconds{reporter}
//	oboe_event_size_bytes{reporter}
//	oboe_tracing_events_total{layer,label}
//
// Every metric carries a "service" label. *Metrics implements
// observability.Observer, so it is attached to the other packages as their
// observer:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "checkout"})
//	s, _ := settings.New(cfg.Settings)
//	s.WithObserver(m)
//	rep, _ := reporter.New(cfg.Reporter, reporter.WithObserver(m))
//
// Applications may register their own metrics on the application registry
// through MetricsCollector. Setting an address to "" disables that
// endpoint.
package metrics
