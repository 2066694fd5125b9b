package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Interop constants shared with the collectors.
const (
	// SampleResolution is the denominator of every sample rate.
	SampleResolution = 1_000_000

	// DefaultSampleRate is used while the sample rate is RateUnset.
	DefaultSampleRate = 300_000

	// RateUnset means "use DefaultSampleRate".
	RateUnset = -1

	// AppTokenLen is the exact length of a credential token.
	AppTokenLen = 32
)

// TraceMode selects the global tracing policy.
type TraceMode int

const (
	// TraceNever disables tracing.
	TraceNever TraceMode = 0
	// TraceAlways starts new traces at the sample rate and continues
	// inbound ones.
	TraceAlways TraceMode = 1
	// TraceThrough only continues traces started upstream.
	TraceThrough TraceMode = 2
)

// Valid reports whether m is one of the three known modes.
func (m TraceMode) Valid() bool {
	return m == TraceNever || m == TraceAlways || m == TraceThrough
}

func (m TraceMode) String() string {
	switch m {
	case TraceNever:
		return "never"
	case TraceAlways:
		return "always"
	case TraceThrough:
		return "through"
	default:
		return "TraceMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Flags derives the sampling flags of m.
func (m TraceMode) Flags() Flags {
	switch m {
	case TraceAlways:
		return FlagSampleStart | FlagSampleThroughAlways | FlagSampleSyntheticAlways
	case TraceThrough:
		return FlagSampleThroughAlways
	default:
		return 0
	}
}

// ParseTraceMode accepts "never", "always", "through" (any case) or their
// numeric values. An empty string means TraceAlways.
func ParseTraceMode(s string) (TraceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always", "1":
		return TraceAlways, nil
	case "never", "0":
		return TraceNever, nil
	case "through", "2":
		return TraceThrough, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTraceMode, s)
	}
}

// Flags is the sampling flag bitfield.
type Flags uint32

const (
	FlagSampleStart           Flags = 0x04
	FlagSampleThroughAlways   Flags = 0x10
	FlagSampleSyntheticAlways Flags = 0x20
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagSampleStart, "sample_start"},
	{FlagSampleThroughAlways, "sample_through_always"},
	{FlagSampleSyntheticAlways, "sample_synthetic_always"},
}

// Has reports whether every bit of x is set in f.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseFlags builds a bitfield from flag names as written by Flags.String.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, n := range names {
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(strings.TrimSpace(n), fn.name) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFlag, n)
		}
	}
	return f, nil
}

// Source names the rule that produced a Decision.
type Source string

const (
	SourceTracingDisabled      Source = "tracing-disabled"
	SourceNewTraceNotPermitted Source = "new-trace-not-permitted"
	SourceNewTraceForced       Source = "new-trace-forced"
	SourceNewTraceRate         Source = "new-trace-rate"
	SourceContinuedTrace       Source = "continued-trace"
	SourceContinuedTraceRate   Source = "continued-trace-rate"
	SourceSynthetic            Source = "synthetic"
	SourceRateLimited          Source = "rate-limited"
)

// Code returns a stable one byte code for s, or 0 for an unknown source.
func (s Source) Code() uint8 {
	switch s {
	case SourceTracingDisabled:
		return 1
	case SourceNewTraceNotPermitted:
		return 2
	case SourceNewTraceForced:
		return 3
	case SourceNewTraceRate:
		return 4
	case SourceContinuedTrace:
		return 5
	case SourceContinuedTraceRate:
		return 6
	case SourceSynthetic:
		return 7
	case SourceRateLimited:
		return 8
	default:
		return 0
	}
}
