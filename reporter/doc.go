// Package reporter delivers finished events to a collector.
//
// A Reporter takes the Metadata of the reporting context and an Event,
// stamps the event with Timestamp_u, Hostname and PID, encodes it as an
// ordered BSON document and hands it to one transport:
//
//	udp    one datagram per event to host:port (default 127.0.0.1:7831)
//	file   BSON documents, or extended JSON lines, appended to a file
//	kafka  one message per event, keyed by task id
//	minio  one object per event at <prefix>/<task id>/<op id>.bson
//	otlp   one zero length OpenTelemetry span per event, over OTLP/HTTP
//	noop   discards events
//
// The transport is chosen by Config.Type when the reporter is created.
// Errors are wrapped and returned to the caller; nothing is retried.
//
// Example:
//
//	rep, err := reporter.New(reporter.Config{
//	    Type: reporter.TypeFile,
//	    File: reporter.FileConfig{Path: "/var/log/oboe/events.bson"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer rep.Close()
//
//	n, err := rep.Report(ctx, tc.Get(), ev)
package reporter
