// Package logger is the structured logging layer of oboe, built on zap.
//
// Every entry is JSON with a timestamp, the level, the caller, the process
// id and the service name. The *WithContext methods also correlate entries
// with the trace carried by the context:
//
//	ctx = tracectx.NewContext(ctx, tc)
//	log.InfoWithContext(ctx, "layer entered", nil, map[string]interface{}{"layer": "web"})
//	// {"level":"INFO","msg":"layer entered","layer":"web",
//	//  "x_trace":"2B...01","task_id":"...","op_id":"...","sampled":true}
//
// The logger is configured from the "logger" section of the oboe
// configuration file or the OBOE_LOGGER_* environment variables, and can be
// injected with FXModule.
package logger
