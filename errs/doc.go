// Package errs defines the error taxonomy shared by every oboe package.
//
// Each package declares its own specific sentinels (for example
// settings.ErrSampleRateOutOfRange) by wrapping one of the three categories
// below, so callers can branch either on the precise failure or on its
// category:
//
//	if errors.Is(err, errs.ErrInvalidArgument) {
//		// reject the configuration
//	}
//
// Categories:
//   - ErrInvalidFormat: a textual X-Trace identifier failed to parse
//   - ErrInvalidArgument: a value is out of range, of the wrong type, or
//     belongs to a different trace
//   - ErrState: the operation needs a valid Metadata or execution context
//     and did not get one
//
// Every public operation validates first and returns one of these errors
// without mutating anything.
package errs
