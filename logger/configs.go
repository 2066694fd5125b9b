package logger

// Log levels accepted in Config.Level.
const (
	// Debug logs everything, including per-event report details.
	Debug = "debug"

	// Info logs lifecycle messages and configuration reloads.
	Info = "info"

	// Warning logs dropped events and rejected reloads.
	Warning = "warning"

	// Error logs only failures.
	Error = "error"
)

// Config defines the logger configuration.
type Config struct {
	// Level is one of "debug", "info", "warning" or "error". Unknown values
	// mean "info".
	//
	// This setting can be configured via:
	//   - YAML configuration with the "level" key
	//   - Environment variable OBOE_LOGGER_LEVEL
	Level string `yaml:"level" envconfig:"LEVEL"`

	// EnableTracing adds trace correlation fields to the *WithContext
	// methods: x_trace, task_id and op_id from a tracectx.Context carried by
	// the context, and trace_id and span_id from an OpenTelemetry span.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "enable_tracing" key
	//   - Environment variable OBOE_LOGGER_ENABLE_TRACING
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`

	// ServiceName fills the "service" field of every entry.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// CallerSkip is the number of stack frames skipped when reporting the
	// caller. Values below 1 mean 1, which is right when the logger is
	// called directly.
	CallerSkip int `yaml:"caller_skip" envconfig:"CALLER_SKIP"`
}
