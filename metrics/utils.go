package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CreateCounter registers a counter vector on the application registry.
//
//	retries := m.CreateCounter("checkout_retries_total", "Checkout retries.", []string{"reason"})
//	retries.WithLabelValues("timeout").Inc()
func (m *Metrics) CreateCounter(name, help string, labels []string) Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.wrappedApplicationRegisterer.MustRegister(vec)
	return &counter{vec: vec}
}

// CreateHistogram registers a histogram vector on the application registry.
// nil buckets mean prometheus.DefBuckets.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) Histogram {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	m.wrappedApplicationRegisterer.MustRegister(vec)
	return &observerVec{vec: vec}
}

// CreateGauge registers a gauge vector on the application registry.
func (m *Metrics) CreateGauge(name, help string, labels []string) Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	m.wrappedApplicationRegisterer.MustRegister(vec)
	return &gauge{vec: vec}
}

// CreateSummary registers a summary vector on the application registry.
func (m *Metrics) CreateSummary(name, help string, labels []string, objectives map[float64]float64) Summary {
	vec := prometheus.NewSummaryVec(prometheus.SummaryOpts{Name: name, Help: help, Objectives: objectives}, labels)
	m.wrappedApplicationRegisterer.MustRegister(vec)
	return &observerVec{vec: vec}
}
