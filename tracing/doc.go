// Package tracing reports the entry, info and exit events of traced units
// of work.
//
// A unit of work starts with StartLayer, which asks the settings whether to
// trace it, continues or starts the trace, reports the entry event and
// returns a context carrying the trace context. Events reported with the
// returned context are linked in order by their edges. EndLayer reports the
// exit event and returns the X-Trace identifier to hand back to the caller.
//
//	ctx, d, err := client.StartLayer(ctx, tracing.StartOptions{
//	    Layer:  "worker",
//	    XTrace: job.XTrace,
//	})
//	if err != nil {
//	    log.Warn("trace start failed", err)
//	}
//	_ = client.ReportInfo(ctx, "Queue", job.Queue)
//	xtrace, _ := client.EndLayer(ctx)
//
// Unsampled units of work carry an identifier so it still propagates
// downstream, but report nothing.
//
// Layers started with a context returned by StartLayer are nested: each
// works on its own copy of the outer trace context, so nested layers may be
// started from several goroutines, and inherits the outer sampling
// decision. A trace context extracted by a propagator is treated as an
// inbound identifier and decided on like opts.XTrace. Events of one layer
// must still be reported from one goroutine at a time.
//
// Middleware wraps an http.Handler with the same flow, reading and writing
// the X-Trace header.
package tracing
