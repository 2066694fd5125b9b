// Package settings holds the process-wide sampling configuration and makes
// the per-request sampling decision.
//
// # Configuration
//
// A Settings records a trace mode (never, always, through), a sample rate
// out of SampleResolution, the current layer, a 32 character credential
// token, optional per-layer overrides and an optional per-URL rate limit.
// Every setter marks the configuration dirty; the next decision compiles an
// immutable Handle from a consistent snapshot, clears the dirty flag and
// reuses that Handle until the next setter runs.
//
// # Decisions
//
// ShouldSample applies, in order:
//
//  1. trace mode never: not sampled ("tracing-disabled")
//  2. synthetic id present: sampled ("synthetic")
//  3. valid inbound X-Trace: sampled when the mode is through or the
//     through-always flag is set ("continued-trace"), otherwise a rate draw
//     ("continued-trace-rate")
//  4. new trace: refused without the sample-start flag
//     ("new-trace-not-permitted"), sampled without a draw at full rate
//     ("new-trace-forced"), otherwise a rate draw ("new-trace-rate")
//
// Rate-drawn outcomes can additionally be downgraded by the rate limiter
// ("rate-limited").
//
// # Usage
//
//	s, err := settings.New(settings.Config{TraceMode: "always", Layer: "web"})
//	if err != nil {
//		return err
//	}
//	d := s.ShouldSample("", inboundXTrace, "", r.URL.Path)
//	if d.Sampled {
//		// start or continue the trace
//	}
//
// Tests make the draw deterministic with WithRand and the rate limiter
// with WithClock.
package settings
