package tracing

import (
	"fmt"

	"github.com/aalemi-dev/oboe/errs"
)

// ErrNoContext is returned when an operation needs a trace context that
// ctx does not carry. Call StartLayer first.
var ErrNoContext = fmt.Errorf("%w: no trace context", errs.ErrState)
