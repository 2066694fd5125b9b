// Package tracectx holds the current position in a trace for one unit of
// work and carries it through a call chain on a context.Context.
//
// There is no process-wide "current" context: each request owns its own
// *Context and passes it explicitly.
//
//	tc, err := tracectx.NewFromString(r.Header.Get("X-Trace"))
//	if err != nil {
//		tc = tracectx.New()
//		_, _ = tc.StartTrace()
//	}
//	ctx := tracectx.NewContext(r.Context(), tc)
//
//	ev, _ := tc.CreateEvent()  // same trace, new op id
//	_ = ev.AddEdge(tc.Get())   // link to where we were
//	// ... report ev ...
//	_ = tc.Advance(ev)         // we are now at ev
package tracectx
