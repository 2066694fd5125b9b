package settings

import (
	"fmt"

	"github.com/aalemi-dev/oboe/errs"
)

// Configuration errors. All of them wrap errs.ErrInvalidArgument.
var (
	// ErrInvalidTraceMode is returned for a trace mode outside never, always
	// and through.
	ErrInvalidTraceMode = fmt.Errorf("%w: trace mode", errs.ErrInvalidArgument)

	// ErrSampleRateOutOfRange is returned for a rate outside
	// [0, SampleResolution] that is not RateUnset.
	ErrSampleRateOutOfRange = fmt.Errorf("%w: sample rate", errs.ErrInvalidArgument)

	// ErrInvalidAppToken is returned for a token that is not exactly
	// AppTokenLen characters.
	ErrInvalidAppToken = fmt.Errorf("%w: app token", errs.ErrInvalidArgument)

	// ErrInvalidFlag is returned for an unknown sampling flag name.
	ErrInvalidFlag = fmt.Errorf("%w: sampling flag", errs.ErrInvalidArgument)

	// ErrInvalidRateLimit is returned for a rate limit without a positive
	// rate.
	ErrInvalidRateLimit = fmt.Errorf("%w: rate limit", errs.ErrInvalidArgument)

	// ErrEmptyLayer is returned when a layer override has no layer name.
	ErrEmptyLayer = fmt.Errorf("%w: empty layer name", errs.ErrInvalidArgument)
)

func validateSampleRate(rate int) error {
	if rate == RateUnset {
		return nil
	}
	if rate < 0 || rate > SampleResolution {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSampleRateOutOfRange, rate, SampleResolution)
	}
	return nil
}

func validateTraceMode(m TraceMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTraceMode, int(m))
	}
	return nil
}

func validateAppToken(token string) error {
	if len(token) != AppTokenLen {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidAppToken, len(token), AppTokenLen)
	}
	return nil
}
