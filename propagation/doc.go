// Package propagation carries X-Trace identifiers across process
// boundaries as an OpenTelemetry TextMapPropagator.
//
//	prop := propagation.XTrace{}
//	ctx = prop.Extract(r.Context(), otelpropagation.HeaderCarrier(r.Header))
//	...
//	prop.Inject(ctx, otelpropagation.HeaderCarrier(outbound.Header))
package propagation
