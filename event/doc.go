// Package event builds the records that describe one point of a trace.
//
// An Event is created from a metadata.Metadata (usually with a fresh op id),
// annotated with key/value pairs, linked to the operations that causally
// precede it, and handed to a reporter. Its wire form is an ordered BSON
// document:
//
//	X-Trace: 2B...01
//	Layer:   "http"
//	Label:   "entry"
//	...      annotations in insertion order, keys may repeat
//	Edge:    "89ABCDEF01234567"
//	Edge:    ...
//
// Timestamps, host name and process id are stamped by the reporter.
//
//	ev, err := event.New(ctx.Get(), true)
//	if err != nil {
//		return err
//	}
//	_ = ev.AddInfo(event.KeyLabel, event.LabelInfo)
//	_ = ev.AddInfo("rows", 42)
//	if err := ev.AddEdge(ctx.Get()); err != nil {
//		return err
//	}
package event
