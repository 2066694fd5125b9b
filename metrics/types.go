package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Counter is a monotonically increasing value. Call WithLabelValues to bind
// the label values; Inc and Add on an unbound counter use no label values.
type Counter interface {
	WithLabelValues(lvs ...string) Counter
	Inc()
	Add(val float64)
}

// Gauge is a value that can go up and down.
type Gauge interface {
	WithLabelValues(lvs ...string) Gauge
	Set(val float64)
	Inc()
	Dec()
	Add(val float64)
	Sub(val float64)
	SetToCurrentTime()
}

// Histogram samples observations into buckets.
type Histogram interface {
	WithLabelValues(lvs ...string) Observer
	Observe(val float64)
}

// Summary samples observations into quantiles.
type Summary interface {
	WithLabelValues(lvs ...string) Observer
	Observe(val float64)
}

// Observer records a single observation.
type Observer interface {
	Observe(val float64)
}

// counter is either a vector, or a child bound to label values.
type counter struct {
	vec   *prometheus.CounterVec
	bound prometheus.Counter
}

func (c *counter) WithLabelValues(lvs ...string) Counter {
	if c.bound != nil {
		return c
	}
	return &counter{bound: c.vec.WithLabelValues(lvs...)}
}

func (c *counter) metric() prometheus.Counter {
	if c.bound != nil {
		return c.bound
	}
	return c.vec.WithLabelValues()
}

func (c *counter) Inc()            { c.metric().Inc() }
func (c *counter) Add(val float64) { c.metric().Add(val) }

type gauge struct {
	vec   *prometheus.GaugeVec
	bound prometheus.Gauge
}

func (g *gauge) WithLabelValues(lvs ...string) Gauge {
	if g.bound != nil {
		return g
	}
	return &gauge{bound: g.vec.WithLabelValues(lvs...)}
}

func (g *gauge) metric() prometheus.Gauge {
	if g.bound != nil {
		return g.bound
	}
	return g.vec.WithLabelValues()
}

func (g *gauge) Set(val float64)   { g.metric().Set(val) }
func (g *gauge) Inc()              { g.metric().Inc() }
func (g *gauge) Dec()              { g.metric().Dec() }
func (g *gauge) Add(val float64)   { g.metric().Add(val) }
func (g *gauge) Sub(val float64)   { g.metric().Sub(val) }
func (g *gauge) SetToCurrentTime() { g.metric().SetToCurrentTime() }

// observerVec backs both Histogram and Summary.
type observerVec struct {
	vec prometheus.ObserverVec
}

func (o *observerVec) WithLabelValues(lvs ...string) Observer {
	return o.vec.WithLabelValues(lvs...)
}

func (o *observerVec) Observe(val float64) {
	o.vec.WithLabelValues().Observe(val)
}
