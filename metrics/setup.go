package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the system and application registries, their HTTP servers
// and the oboe instruments.
//
// Metrics implements MetricsCollector and observability.Observer.
type Metrics struct {
	// SystemServer serves SystemRegistry; nil when disabled.
	SystemServer *http.Server

	// ApplicationServer serves ApplicationRegistry; nil when disabled.
	ApplicationServer *http.Server

	// SystemRegistry holds the runtime, process and build info collectors.
	SystemRegistry *prometheus.Registry

	// ApplicationRegistry holds the oboe instruments and any metric created
	// through MetricsCollector. It always exists.
	ApplicationRegistry *prometheus.Registry

	wrappedApplicationRegisterer prometheus.Registerer

	instruments *instruments
}

// NewMetrics creates the registries, the servers of the enabled endpoints
// and registers the oboe instruments. The servers are started by
// RegisterMetricsLifecycle.
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "checkout"})
//	s.WithObserver(m)
func NewMetrics(cfg Config) *Metrics {
	m := &Metrics{}

	systemAddr := DefaultSystemMetricsAddress
	if cfg.SystemMetricsAddress != nil {
		systemAddr = *cfg.SystemMetricsAddress
	}

	if systemAddr != "" {
		systemRegistry := prometheus.NewRegistry()

		wrappedSystemRegistry := prometheus.WrapRegistererWith(
			prometheus.Labels{"service": cfg.ServiceName},
			systemRegistry,
		)
		wrappedSystemRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)

		m.SystemRegistry = systemRegistry
		m.SystemServer = &http.Server{
			Addr:    systemAddr,
			Handler: promhttp.HandlerFor(systemRegistry, promhttp.HandlerOpts{}),
		}
	}

	applicationRegistry := prometheus.NewRegistry()
	m.ApplicationRegistry = applicationRegistry
	m.wrappedApplicationRegisterer = prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		applicationRegistry,
	)

	appAddr := DefaultApplicationMetricsAddress
	if cfg.ApplicationMetricsAddress != nil {
		appAddr = *cfg.ApplicationMetricsAddress
	}
	if appAddr != "" {
		m.ApplicationServer = &http.Server{
			Addr:    appAddr,
			Handler: promhttp.HandlerFor(applicationRegistry, promhttp.HandlerOpts{}),
		}
	}

	m.instruments = newInstruments(m)
	return m
}
