package settings

import "sync"

var (
	defaultOnce     sync.Once
	defaultSettings *Settings
)

// Default returns the process-wide Settings, created on first use with
// TraceAlways and the default sample rate. It is never replaced or
// destroyed. Applications that can pass a *Settings explicitly should
// prefer New.
func Default() *Settings {
	defaultOnce.Do(func() {
		defaultSettings = newSettings()
	})
	return defaultSettings
}
