package reporter

import (
	"fmt"

	"github.com/aalemi-dev/oboe/errs"
)

var (
	// ErrUnknownType is returned by New for an unknown Config.Type.
	ErrUnknownType = fmt.Errorf("%w: unknown reporter type", errs.ErrInvalidArgument)

	// ErrInvalidConfig is returned by New when the selected section is
	// incomplete.
	ErrInvalidConfig = fmt.Errorf("%w: invalid reporter configuration", errs.ErrInvalidArgument)

	// ErrInvalidMetadata is returned by Report for invalid Metadata.
	ErrInvalidMetadata = fmt.Errorf("%w: invalid metadata", errs.ErrState)

	// ErrForeignEvent is returned by Report when the event belongs to
	// another trace than the Metadata.
	ErrForeignEvent = fmt.Errorf("%w: event belongs to another trace", errs.ErrInvalidArgument)

	// ErrNilEvent is returned by Report for a nil event.
	ErrNilEvent = fmt.Errorf("%w: nil event", errs.ErrInvalidArgument)

	// ErrClosed is returned by Report after Close.
	ErrClosed = fmt.Errorf("%w: reporter closed", errs.ErrState)
)
