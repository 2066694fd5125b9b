package tracing

import (
	"time"

	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/tracectx"
)

// observe notifies the observer of a reported event or a failure.
// Unsampled operations report nothing and are not observed.
func (c *Client) observe(op, layer, label string, start time.Time, err error, tc *tracectx.Context) {
	if c.observer == nil {
		return
	}
	sampled := tc != nil && tc.IsSampled()
	if err == nil && !sampled {
		return
	}

	meta := map[string]interface{}{"sampled": sampled}
	if tc != nil && tc.IsValid() {
		md := tc.Get()
		meta["task_id"] = md.TaskIDString()
		meta["op_id"] = md.OpIDString()
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentTracing,
		Operation:   op,
		Resource:    layer,
		SubResource: label,
		Duration:    c.clock.Since(start),
		Error:       err,
		Metadata:    meta,
	})
}
