package tracing

import (
	"context"
	"fmt"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/settings"
	"github.com/aalemi-dev/oboe/tracectx"
)

// Annotation keys added by the client.
const (
	KeyURL         = "URL"
	KeyErrorClass  = "ErrorClass"
	KeyErrorMsg    = "ErrorMsg"
	KeySyntheticID = "SyntheticID"
)

type layerKey struct{}

// LayerFromContext returns the layer started by the innermost StartLayer
// of ctx, or "".
func LayerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	l, _ := ctx.Value(layerKey{}).(string)
	return l
}

// StartLayer begins a unit of work in a layer and returns ctx carrying its
// trace context.
//
// When ctx carries a layer started by StartLayer and opts.XTrace is empty,
// the layer is nested: it gets its own copy of the parent's trace context,
// its entry event is linked to the parent's op, and it inherits the
// parent's sampling decision unless the layer's policy is Never. Nested
// layers started from concurrent goroutines never share a context.
//
// Otherwise the settings decide. The inbound identifier is opts.XTrace, or
// the trace context ctx already carries (for instance one extracted by a
// propagator); it is continued when it is valid and not foreign, and a new
// trace is started when it is not.
//
// When the decision is to sample, an entry event is reported carrying
// Layer and Label, plus SampleRate and SampleSource unless the layer is
// nested, with an edge to the inbound op. Unsampled contexts are
// still returned so the identifier propagates, but nothing is reported.
//
// On a report error the returned ctx still carries the trace context and
// the error is returned.
func (c *Client) StartLayer(ctx context.Context, opts StartOptions) (context.Context, settings.Decision, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := c.clock.Now()

	parent, hasParent := tracectx.FromContext(ctx)
	hasParent = hasParent && parent.IsValid()
	parentLayer, started := ctx.Value(layerKey{}).(string)
	nested := hasParent && started && opts.XTrace == ""

	inbound := opts.XTrace
	if inbound == "" && hasParent {
		inbound = parent.String()
	}

	var (
		d   settings.Decision
		tc  *tracectx.Context
		ev  *event.Event
		err error
	)
	if nested {
		tc = parent.Copy()
		d = c.inherit(tc, opts.Layer, parentLayer)
		tc.SetSampled(d.Sampled)
		if d.Sampled {
			ev, err = c.next(tc)
		}
	} else {
		d = c.settings.ShouldSample(opts.Layer, inbound, opts.SyntheticID, opts.URL)
		tc, ev, err = begin(d)
	}
	if err != nil {
		c.observe(observability.OperationStart, d.Layer, event.LabelEntry, start, err, tc)
		return ctx, d, err
	}

	ctx = tracectx.NewContext(ctx, tc)
	ctx = context.WithValue(ctx, layerKey{}, d.Layer)

	if d.Sampled {
		err = ev.AddInfoPairs(event.KeyLayer, d.Layer, event.KeyLabel, event.LabelEntry)
		if err == nil && !nested {
			err = ev.AddInfoPairs(event.KeySampleRate, d.Rate, event.KeySampleSource, int(d.Source.Code()))
		}
		if err == nil && opts.URL != "" {
			err = ev.AddInfo(KeyURL, opts.URL)
		}
		if err == nil && opts.SyntheticID != "" {
			err = ev.AddInfo(KeySyntheticID, opts.SyntheticID)
		}
		if err == nil {
			err = ev.AddInfoPairs(opts.KVs...)
		}
		if err == nil {
			err = c.send(ctx, tc, ev)
		}
	}

	c.debug(ctx, "layer started", map[string]interface{}{
		"layer":     d.Layer,
		"sampled":   d.Sampled,
		"source":    string(d.Source),
		"continued": d.Continued,
		"nested":    nested,
	})
	c.observe(observability.OperationStart, d.Layer, event.LabelEntry, start, err, tc)
	return ctx, d, err
}

// ReportInfo reports an info event of the current layer.
func (c *Client) ReportInfo(ctx context.Context, kvs ...any) error {
	return c.ReportEvent(ctx, event.LabelInfo, kvs...)
}

// ReportError reports an error event with ErrorClass and ErrorMsg. A nil
// err reports nothing.
func (c *Client) ReportError(ctx context.Context, err error, kvs ...any) error {
	if err == nil {
		return nil
	}
	pairs := append([]any{KeyErrorClass, fmt.Sprintf("%T", err), KeyErrorMsg, err.Error()}, kvs...)
	return c.ReportEvent(ctx, event.LabelError, pairs...)
}

// ReportEvent reports an event with label in the current layer, linked to
// the previous event of the trace, and moves the context to it. An empty
// label means "info". Nothing is reported for an unsampled context.
func (c *Client) ReportEvent(ctx context.Context, label string, kvs ...any) error {
	if label == "" {
		label = event.LabelInfo
	}
	_, err := c.report(ctx, observability.OperationEvent, label, kvs)
	return err
}

// EndLayer reports the exit event of the current layer and returns the
// X-Trace identifier to send back to the caller, which names the exit event
// when the context is sampled.
func (c *Client) EndLayer(ctx context.Context, kvs ...any) (string, error) {
	return c.report(ctx, observability.OperationEnd, event.LabelExit, kvs)
}

func (c *Client) report(ctx context.Context, op, label string, kvs []any) (string, error) {
	start := c.clock.Now()
	layer := LayerFromContext(ctx)

	tc, ok := tracectx.FromContext(ctx)
	if !ok || !tc.IsValid() {
		c.observe(op, layer, label, start, ErrNoContext, nil)
		return "", ErrNoContext
	}
	if !tc.IsSampled() {
		return tc.String(), nil
	}

	ev, err := c.next(tc)
	if err == nil {
		err = ev.AddInfoPairs(event.KeyLayer, layer, event.KeyLabel, label)
	}
	if err == nil {
		err = ev.AddInfoPairs(kvs...)
	}
	if err == nil {
		err = c.send(ctx, tc, ev)
	}
	c.observe(op, layer, label, start, err, tc)
	return tc.String(), err
}

// begin builds the trace context of a non nested layer from d, and the
// entry event when d is sampled.
func begin(d settings.Decision) (*tracectx.Context, *event.Event, error) {
	tc := tracectx.New()

	if d.Continued {
		if err := tc.Set(d.Inbound.WithSampled(d.Sampled)); err != nil {
			return nil, nil, err
		}
		if !d.Sampled {
			return tc, nil, nil
		}
		ev, err := tc.CreateEvent()
		if err != nil {
			return nil, nil, err
		}
		if err := ev.AddEdge(tc.Get()); err != nil {
			return nil, nil, err
		}
		return tc, ev, nil
	}

	tc.SetSampled(d.Sampled)
	ev, err := tc.StartTrace()
	if err != nil {
		return nil, nil, err
	}
	return tc, ev, nil
}

// next returns an event at a new point of tc linked to its current op.
func (c *Client) next(tc *tracectx.Context) (*event.Event, error) {
	ev, err := tc.CreateEvent()
	if err != nil {
		return nil, err
	}
	if err := ev.AddEdge(tc.Get()); err != nil {
		return nil, err
	}
	return ev, nil
}

// inherit builds the decision of a nested layer: the parent's sampling
// flag under the layer's policy. A layer whose policy is Never is not
// sampled whatever the parent decided.
func (c *Client) inherit(parent *tracectx.Context, layer, parentLayer string) settings.Decision {
	if layer == "" {
		layer = parentLayer
	}
	p := c.settings.Handle().Policy(layer)
	d := settings.Decision{
		Sampled:   parent.IsSampled(),
		Rate:      p.SampleRate,
		Source:    settings.SourceContinuedTrace,
		Flags:     p.Flags,
		TraceMode: p.TraceMode,
		Layer:     layer,
		Continued: true,
		Inbound:   parent.Get(),
	}
	if p.TraceMode == settings.TraceNever {
		d.Sampled = false
		d.Source = settings.SourceTracingDisabled
	}
	return d
}

// send reports ev at the position of tc and advances tc to it. tc does not
// move when the report fails.
func (c *Client) send(ctx context.Context, tc *tracectx.Context, ev *event.Event) error {
	if _, err := c.reporter.Report(ctx, tc.Get(), ev); err != nil {
		c.warn(ctx, "event not reported", err, ev)
		return err
	}
	return tc.Advance(ev)
}

func (c *Client) debug(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.DebugWithContext(ctx, msg, nil, fields)
	}
}

func (c *Client) warn(ctx context.Context, msg string, err error, ev *event.Event) {
	if c.logger != nil {
		c.logger.WarnWithContext(ctx, msg, err, map[string]interface{}{
			"layer": ev.Layer(),
			"label": ev.Label(),
		})
	}
}
