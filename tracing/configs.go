package tracing

// StartOptions describes a unit of work entering a layer.
type StartOptions struct {
	// Layer names the operation. Empty keeps the current layer of the
	// settings.
	Layer string

	// XTrace is the inbound identifier, typically the X-Trace request
	// header. Empty continues the trace context already carried by the
	// context, or starts a new trace.
	XTrace string

	// SyntheticID marks a synthetic monitoring request.
	SyntheticID string

	// URL keys the per-URL rate limiter and is added to the entry event.
	URL string

	// KVs are extra annotations of the entry event, as alternating keys and
	// values.
	KVs []any
}
