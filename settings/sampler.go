package settings

import (
	"github.com/aalemi-dev/oboe/metadata"
)

// Policy is the compiled sampling policy of one layer.
type Policy struct {
	TraceMode  TraceMode
	Flags      Flags
	SampleRate int
}

func (p Policy) with(o LayerOverride) Policy {
	if p.TraceMode == TraceNever {
		return p
	}
	if o.TraceMode != nil {
		p.TraceMode = *o.TraceMode
		p.Flags = o.TraceMode.Flags()
	}
	if o.Flags != nil {
		p.Flags = *o.Flags
	}
	if o.SampleRate != nil {
		p.SampleRate = effectiveRate(*o.SampleRate)
	}
	return p
}

// Handle is an immutable snapshot of the configuration, compiled once per
// dirty cycle. Decisions only read it.
type Handle struct {
	base     Policy
	layer    string
	appToken string
	policies map[string]Policy
	limiter  *urlLimiter
}

// Layer returns the layer name the handle was compiled with.
func (h *Handle) Layer() string { return h.layer }

// AppToken returns the credential token the handle was compiled with.
func (h *Handle) AppToken() string { return h.appToken }

// Policy returns the policy of layer, which is the global policy unless the
// layer has an override.
func (h *Handle) Policy(layer string) Policy {
	if p, ok := h.policies[layer]; ok {
		return p
	}
	return h.base
}

// compileLocked builds a Handle from the current fields. s.mu must be held.
func (s *Settings) compileLocked() *Handle {
	base := Policy{
		TraceMode:  s.traceMode,
		Flags:      s.traceMode.Flags(),
		SampleRate: effectiveRate(s.sampleRate),
	}
	h := &Handle{
		base:     base,
		layer:    s.layer,
		appToken: s.appToken,
		policies: make(map[string]Policy, len(s.overrides)),
		limiter:  s.limiter,
	}
	for name, o := range s.overrides {
		h.policies[name] = base.with(o)
	}
	return h
}

// acquire records layer as the current layer, rebuilds the handle if the
// settings are dirty, and returns it. It reports whether a rebuild happened.
func (s *Settings) acquire(layer string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer != "" && layer != s.layer {
		s.layer = layer
		s.changed = true
	}
	if !s.changed && s.handle != nil {
		return s.handle, false
	}

	s.handle = s.compileLocked()
	s.rebuilds++
	s.changed = false
	return s.handle, true
}

// Decision is the outcome of ShouldSample.
type Decision struct {
	Sampled bool

	// Rate is the effective sample rate of the layer's policy.
	Rate int

	// Source names the rule that produced the outcome.
	Source Source

	Flags     Flags
	TraceMode TraceMode
	Layer     string

	// Continued is true when a valid, non foreign inbound identifier was
	// found; Inbound then holds it.
	Continued bool
	Inbound   metadata.Metadata
}

// Code packs the decision into four bytes: the rate in the low three bytes
// and the source code in the high byte.
func (d Decision) Code() uint32 {
	return uint32(d.Rate)&0xFFFFFF | uint32(d.Source.Code())<<24
}

// ShouldSample decides whether the unit of work entering layer is traced.
//
//   - inboundXTrace is the identifier propagated by the caller, or "" to
//     start a new trace. Unparseable or foreign identifiers also start a
//     new trace. Version 1 identifiers are continued.
//   - syntheticID marks a synthetic monitoring request, which is always
//     sampled unless tracing is disabled.
//   - url keys the optional rate limiter; the layer is used when it is "".
//
// An empty layer keeps the current one. The configuration is only read
// under the lock; the random draw happens outside it.
func (s *Settings) ShouldSample(layer, inboundXTrace, syntheticID, url string) Decision {
	h, rebuilt := s.acquire(layer)
	if rebuilt {
		s.observeRebuild(h)
	}

	d := s.decide(h, inboundXTrace, syntheticID, url)
	s.observeDecision(d)
	return d
}

func (s *Settings) decide(h *Handle, inboundXTrace, syntheticID, url string) Decision {
	p := h.Policy(h.layer)
	d := Decision{
		Rate:      p.SampleRate,
		Flags:     p.Flags,
		TraceMode: p.TraceMode,
		Layer:     h.layer,
	}

	if p.TraceMode == TraceNever {
		d.Source = SourceTracingDisabled
		return d
	}

	if inboundXTrace != "" {
		if md, err := metadata.Parse(inboundXTrace); err == nil && !s.isForeign(md, h.appToken) {
			d.Continued = true
			d.Inbound = md
		}
	}

	if syntheticID != "" {
		d.Sampled = true
		d.Source = SourceSynthetic
		return d
	}

	if d.Continued {
		if p.TraceMode == TraceThrough || p.Flags.Has(FlagSampleThroughAlways) {
			d.Sampled = true
			d.Source = SourceContinuedTrace
			return d
		}
		d.Source = SourceContinuedTraceRate
		d.Sampled = s.draw(p.SampleRate)
	} else {
		if !p.Flags.Has(FlagSampleStart) {
			d.Source = SourceNewTraceNotPermitted
			return d
		}
		if p.SampleRate >= SampleResolution {
			d.Sampled = true
			d.Source = SourceNewTraceForced
			return d
		}
		d.Source = SourceNewTraceRate
		d.Sampled = s.draw(p.SampleRate)
	}

	if d.Sampled && h.limiter != nil {
		key := url
		if key == "" {
			key = h.layer
		}
		if !h.limiter.allow(key) {
			d.Sampled = false
			d.Source = SourceRateLimited
		}
	}
	return d
}

func (s *Settings) draw(rate int) bool {
	if rate <= 0 {
		return false
	}
	return s.rng.IntN(SampleResolution) < rate
}

// isForeign reports whether a parsed inbound identifier must not be
// continued. Version 1 identifiers carry no sampled bit and are continued
// like any other; the decision alone says whether the layer samples.
func (s *Settings) isForeign(md metadata.Metadata, appToken string) bool {
	return s.foreign != nil && s.foreign(md, appToken)
}
