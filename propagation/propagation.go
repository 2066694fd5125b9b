package propagation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	otelpropagation "go.opentelemetry.io/otel/propagation"

	"github.com/aalemi-dev/oboe/tracectx"
)

// Carrier keys read and written by this package.
const (
	// HeaderName carries the X-Trace identifier.
	HeaderName = "X-Trace"

	// SyntheticHeaderName carries the id of a synthetic monitoring request.
	SyntheticHeaderName = "X-TV-Meta"
)

// XTrace propagates the trace context of a tracectx.Context in the X-Trace
// header. It implements the OpenTelemetry TextMapPropagator, so it can be
// combined with W3C trace context and baggage.
type XTrace struct{}

var _ otelpropagation.TextMapPropagator = XTrace{}

// Inject writes the X-Trace identifier of the context carried by ctx.
// Nothing is written when ctx holds no valid context.
func (XTrace) Inject(ctx context.Context, carrier otelpropagation.TextMapCarrier) {
	md := tracectx.MetadataFromContext(ctx)
	if !md.IsValid() {
		return
	}
	if s, err := md.Format(); err == nil {
		carrier.Set(HeaderName, s)
	}
}

// Extract returns ctx carrying a new tracectx.Context continuing the
// identifier found in carrier. ctx is returned unchanged when the header is
// missing or does not parse.
func (XTrace) Extract(ctx context.Context, carrier otelpropagation.TextMapCarrier) context.Context {
	v := Inbound(carrier)
	if v == "" {
		return ctx
	}
	tc, err := tracectx.NewFromString(v)
	if err != nil {
		return ctx
	}
	return tracectx.NewContext(ctx, tc)
}

// Fields returns the carrier keys used by the propagator.
func (XTrace) Fields() []string {
	return []string{HeaderName}
}

// Inbound returns the raw X-Trace value of carrier, trimmed, or "".
func Inbound(carrier otelpropagation.TextMapCarrier) string {
	return strings.TrimSpace(carrier.Get(HeaderName))
}

// Synthetic returns the synthetic monitoring id of carrier, trimmed, or "".
func Synthetic(carrier otelpropagation.TextMapCarrier) string {
	return strings.TrimSpace(carrier.Get(SyntheticHeaderName))
}

// Composite returns a propagator handling W3C trace context, baggage and
// X-Trace.
func Composite() otelpropagation.TextMapPropagator {
	return otelpropagation.NewCompositeTextMapPropagator(
		otelpropagation.TraceContext{},
		otelpropagation.Baggage{},
		XTrace{},
	)
}

// Install registers Composite as the global OpenTelemetry propagator.
func Install() {
	otel.SetTextMapPropagator(Composite())
}
