// Package observability defines the hook through which sampling decisions
// and event reports are observed.
//
// The settings, reporter and tracing packages call an Observer when one is
// attached; metrics.Metrics is the usual implementation. Several observers
// can be combined with Multi.
//
//	s, _ := settings.New(cfg)
//	s.WithObserver(observability.Multi(m, auditObserver))
package observability
