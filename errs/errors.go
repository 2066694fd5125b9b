package errs

import "errors"

var (
	// ErrInvalidFormat is returned when an X-Trace string has the wrong length,
	// contains non-hex characters or carries an unknown header.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidArgument is returned when an argument is out of range or of an
	// unsupported type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrState is returned when an operation is attempted on an invalid
	// Metadata or an uninitialized execution context.
	ErrState = errors.New("invalid state")
)

// Category reports which of the three categories err belongs to, or nil if
// it belongs to none of them.
func Category(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, ErrInvalidArgument):
		return ErrInvalidArgument
	case errors.Is(err, ErrState):
		return ErrState
	default:
		return nil
	}
}
