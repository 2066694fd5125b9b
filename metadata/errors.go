package metadata

import (
	"fmt"

	"github.com/aalemi-dev/oboe/errs"
)

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: x-trace %s", errs.ErrInvalidFormat, fmt.Sprintf(format, args...))
}

func argumentError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func stateError(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrState, msg)
}
