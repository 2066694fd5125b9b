// Package config loads the oboe configuration from a YAML file and OBOE_*
// environment variables, and watches the file for sampling changes.
//
// The file has one section per package:
//
//	settings:
//	  trace_mode: through
//	  layer: web
//	reporter:
//	  type: kafka
//	  kafka:
//	    brokers: [kafka:9092]
//	    topic: oboe-events
//	logger:
//	  level: debug
//
// Environment variables override the file. Their names are built from the
// section and field, e.g. OBOE_SETTINGS_SAMPLE_RATE=100000 or
// OBOE_REPORTER_TYPE=file. Unknown keys in the file are rejected.
//
// Only the settings section is hot reloaded. A Watcher re-applies it with
// settings.Settings.Apply, which either takes the whole section or leaves
// the running configuration unchanged:
//
//	w, err := config.NewWatcher(path, s, log)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Close()
package config
