package observability

import "time"

// Components that report operations.
const (
	ComponentSettings = "settings"
	ComponentReporter = "reporter"
	ComponentTracing  = "tracing"
)

// Operations reported by the components.
const (
	OperationSample  = "sample"
	OperationRebuild = "rebuild"
	OperationReport  = "report"
	OperationStart   = "start"
	OperationEvent   = "event"
	OperationEnd     = "end"
)

// Observer receives a notification for every sampling decision, settings
// rebuild and event report, without tying those packages to a metrics or
// logging backend.
//
// Observers are optional; every package works without one. Implementations
// must be safe for concurrent use and should return quickly, since decisions
// sit on the request hot path.
type Observer interface {
	// ObserveOperation is called when an operation completes.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is one of the Component constants.
	Component string

	// Operation is what happened.
	// Examples:
	//   settings: "sample", "rebuild"
	//   reporter: "report"
	//   tracing:  "start", "event", "end"
	Operation string

	// Resource is the primary subject.
	// Examples:
	//   settings: layer name
	//   reporter: reporter type ("udp", "file", "kafka", "minio", "otlp")
	Resource string

	// SubResource adds detail to Resource (optional).
	// Examples:
	//   settings: decision source ("new-trace-rate")
	//   reporter: event label ("entry")
	SubResource string

	// Duration is how long the operation took, when measured.
	Duration time.Duration

	// Error is the error returned by the operation, if any.
	Error error

	// Size is the number of bytes written by a report (optional).
	Size int64

	// Metadata carries operation specific values (optional).
	// Examples:
	//   settings: {"sampled": true, "rate": 300000}
	//   reporter: {"task_id": "0123..."}
	Metadata map[string]interface{}
}

// Sampled returns the "sampled" metadata entry of a decision, or false.
func (c OperationContext) Sampled() bool {
	v, _ := c.Metadata["sampled"].(bool)
	return v
}
