package settings

import (
	"github.com/aalemi-dev/oboe/observability"
)

// Operations reported to the observer.
const (
	OperationSample  = observability.OperationSample
	OperationRebuild = observability.OperationRebuild
)

func (s *Settings) observeDecision(d Decision) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentSettings,
		Operation:   OperationSample,
		Resource:    d.Layer,
		SubResource: string(d.Source),
		Metadata: map[string]interface{}{
			"sampled":    d.Sampled,
			"rate":       d.Rate,
			"trace_mode": d.TraceMode.String(),
		},
	})
}

func (s *Settings) observeRebuild(h *Handle) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component: observability.ComponentSettings,
		Operation: OperationRebuild,
		Resource:  h.layer,
	})
}
