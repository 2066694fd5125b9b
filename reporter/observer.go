package reporter

import (
	"time"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/observability"
)

func (c *Client) observe(e *event.Event, duration time.Duration, size int, err error) {
	if c.observer == nil {
		return
	}
	md := e.Metadata()
	c.observer.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentReporter,
		Operation:   observability.OperationReport,
		Resource:    c.kind,
		SubResource: e.Label(),
		Duration:    duration,
		Error:       err,
		Size:        int64(size),
		Metadata: map[string]interface{}{
			"task_id": md.TaskIDString(),
			"op_id":   md.OpIDString(),
		},
	})
}
