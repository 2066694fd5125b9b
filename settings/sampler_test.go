package settings

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aalemi-dev/oboe/metadata"
	"github.com/aalemi-dev/oboe/observability"
)

const inbound = "2B0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456701"

// fixedRand returns the same value for every draw and counts the draws.
type fixedRand struct {
	mu    sync.Mutex
	value int
	draws int
}

func (r *fixedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
	return r.value % n
}

func mustSettings(t *testing.T, cfg Config, r Rand) *Settings {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s.WithRand(r)
}

func TestShouldSample_NewTraceForced(t *testing.T) {
	t.Parallel()
	r := &fixedRand{value: SampleResolution - 1}
	s := mustSettings(t, Config{TraceMode: "always", SampleRate: Ptr(SampleResolution)}, r)
	s.SetLayer("test")

	d := s.ShouldSample("test", "", "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceNewTraceForced, d.Source)
	assert.Equal(t, "new-trace-forced", string(d.Source))
	assert.Equal(t, SampleResolution, d.Rate)
	assert.Equal(t, "test", d.Layer)
	assert.False(t, d.Continued)
	assert.Zero(t, r.draws)
}

func TestShouldSample_NeverIgnoresEverything(t *testing.T) {
	t.Parallel()
	r := &fixedRand{}
	s := mustSettings(t, Config{TraceMode: "never", SampleRate: Ptr(SampleResolution)}, r)
	require.NoError(t, s.SetLayerOverride("db", LayerOverride{TraceMode: ptrMode(TraceAlways)}))

	for _, in := range []string{"", inbound, "garbage"} {
		for _, syn := range []string{"", "synthetic-1"} {
			for _, layer := range []string{"", "db"} {
				d := s.ShouldSample(layer, in, syn, "/x")
				assert.False(t, d.Sampled)
				assert.Equal(t, SourceTracingDisabled, d.Source)
			}
		}
	}
	assert.Zero(t, r.draws)
}

func TestShouldSample_SyntheticAlwaysSampled(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"always", "through"} {
		s := mustSettings(t, Config{TraceMode: mode, SampleRate: Ptr(0)}, &fixedRand{})
		for _, in := range []string{"", inbound} {
			d := s.ShouldSample("web", in, "synthetic-1", "")
			assert.True(t, d.Sampled, mode)
			assert.Equal(t, SourceSynthetic, d.Source)
		}
	}
}

func TestShouldSample_NewTraceRate(t *testing.T) {
	t.Parallel()

	below := mustSettings(t, Config{SampleRate: Ptr(300_000)}, &fixedRand{value: 299_999})
	d := below.ShouldSample("web", "", "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceNewTraceRate, d.Source)

	at := mustSettings(t, Config{SampleRate: Ptr(300_000)}, &fixedRand{value: 300_000})
	d = at.ShouldSample("web", "", "", "")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceNewTraceRate, d.Source)

	r := &fixedRand{value: 0}
	zero := mustSettings(t, Config{SampleRate: Ptr(0)}, r)
	d = zero.ShouldSample("web", "", "", "")
	assert.False(t, d.Sampled)
	assert.Zero(t, r.draws)
}

func TestShouldSample_DefaultRate(t *testing.T) {
	t.Parallel()
	s := mustSettings(t, Config{}, &fixedRand{value: DefaultSampleRate - 1})

	d := s.ShouldSample("web", "", "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, DefaultSampleRate, d.Rate)
}

func TestShouldSample_InvalidInboundStartsNewTrace(t *testing.T) {
	t.Parallel()
	s := mustSettings(t, Config{SampleRate: Ptr(SampleResolution)}, &fixedRand{})

	d := s.ShouldSample("web", "2BZZ", "", "")
	assert.True(t, d.Sampled)
	assert.False(t, d.Continued)
	assert.Equal(t, SourceNewTraceForced, d.Source)
}

func TestShouldSample_ThroughMode(t *testing.T) {
	t.Parallel()
	s := mustSettings(t, Config{TraceMode: "through", SampleRate: Ptr(SampleResolution)}, &fixedRand{})

	d := s.ShouldSample("web", "", "", "")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceNewTraceNotPermitted, d.Source)

	d = s.ShouldSample("web", inbound, "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceContinuedTrace, d.Source)
	assert.True(t, d.Continued)
	assert.Equal(t, inbound, d.Inbound.String())
}

func TestShouldSample_ContinuedAlways(t *testing.T) {
	t.Parallel()
	r := &fixedRand{value: SampleResolution - 1}
	s := mustSettings(t, Config{SampleRate: Ptr(0)}, r)

	d := s.ShouldSample("web", inbound, "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceContinuedTrace, d.Source)
	assert.Zero(t, r.draws)
}

func TestShouldSample_ContinuedRateForLayerWithoutThroughFlag(t *testing.T) {
	t.Parallel()
	r := &fixedRand{value: 500}
	s := mustSettings(t, Config{
		Layers: map[string]LayerConfig{
			"db":    {Flags: []string{"sample_start"}, SampleRate: Ptr(1000)},
			"cache": {Flags: []string{"sample_start"}, SampleRate: Ptr(100)},
		},
	}, r)

	d := s.ShouldSample("db", inbound, "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceContinuedTraceRate, d.Source)
	assert.Equal(t, 1000, d.Rate)

	d = s.ShouldSample("cache", inbound, "", "")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceContinuedTraceRate, d.Source)
	assert.Equal(t, 2, r.draws)

	d = s.ShouldSample("web", inbound, "", "")
	assert.Equal(t, SourceContinuedTrace, d.Source)
}

func TestShouldSample_LayerOverrideTraceMode(t *testing.T) {
	t.Parallel()
	s := mustSettings(t, Config{SampleRate: Ptr(SampleResolution)}, &fixedRand{})
	require.NoError(t, s.SetLayerOverride("cache", LayerOverride{TraceMode: ptrMode(TraceNever)}))

	d := s.ShouldSample("cache", "", "synthetic-1", "")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceTracingDisabled, d.Source)

	s.ClearLayerOverride("cache")
	d = s.ShouldSample("cache", "", "", "")
	assert.True(t, d.Sampled)
}

func TestShouldSample_ForeignInbound(t *testing.T) {
	t.Parallel()
	s := mustSettings(t, Config{TraceMode: "through", AppToken: validToken}, &fixedRand{})

	var seenToken string
	s.WithForeignCheck(func(md metadata.Metadata, token string) bool {
		seenToken = token
		return md.TaskIDString() == "0123456789ABCDEF0123456789ABCDEF01234567"
	})

	d := s.ShouldSample("web", inbound, "", "")
	assert.False(t, d.Continued)
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceNewTraceNotPermitted, d.Source)
	assert.Equal(t, validToken, seenToken)
}

func TestShouldSample_VersionOneInboundIsContinued(t *testing.T) {
	t.Parallel()
	const v1 = "1B0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF01234567"

	through := mustSettings(t, Config{TraceMode: "through"}, &fixedRand{})
	d := through.ShouldSample("web", v1, "", "")
	assert.True(t, d.Continued)
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceContinuedTrace, d.Source)
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF01234567", d.Inbound.TaskIDString())
	assert.Equal(t, "89ABCDEF01234567", d.Inbound.OpIDString())

	never := mustSettings(t, Config{TraceMode: "never"}, &fixedRand{})
	d = never.ShouldSample("web", v1, "", "")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceTracingDisabled, d.Source)
}

func TestShouldSample_RateLimited(t *testing.T) {
	t.Parallel()
	clock := clockz.NewFakeClock()
	s := mustSettings(t, Config{
		SampleRate: Ptr(SampleResolution - 1),
		RateLimit:  RateLimitConfig{Enabled: true, PerSecond: 1},
	}, &fixedRand{value: 0})
	s.WithClock(clock)

	d := s.ShouldSample("web", "", "", "/checkout")
	assert.True(t, d.Sampled)
	assert.Equal(t, SourceNewTraceRate, d.Source)

	d = s.ShouldSample("web", "", "", "/checkout")
	assert.False(t, d.Sampled)
	assert.Equal(t, SourceRateLimited, d.Source)

	d = s.ShouldSample("web", "", "", "/cart")
	assert.True(t, d.Sampled, "buckets are per URL")

	d = s.ShouldSample("web", inbound, "synthetic-1", "/checkout")
	assert.True(t, d.Sampled, "synthetic traces are never limited")

	clock.Advance(time.Second)
	d = s.ShouldSample("web", "", "", "/checkout")
	assert.True(t, d.Sampled)
}

func TestShouldSample_SampleFractionConverges(t *testing.T) {
	t.Parallel()
	const trials = 200_000

	// five and a half standard deviations: a false failure is ~1 in 25 million
	z := distuv.UnitNormal.Quantile(1 - 2e-8)

	for i, rate := range []int{0, 1_000, 250_000, 500_000, 999_999, SampleResolution} {
		src := rand.New(rand.NewPCG(uint64(i)+1, 42))
		s := mustSettings(t, Config{TraceMode: "always", SampleRate: Ptr(rate)}, src)

		sampled := 0
		for n := 0; n < trials; n++ {
			if s.ShouldSample("web", "", "", "").Sampled {
				sampled++
			}
		}

		p := float64(rate) / SampleResolution
		dist := distuv.Binomial{N: trials, P: p}
		tolerance := z*dist.StdDev() + 1
		assert.LessOrEqual(t, math.Abs(float64(sampled)-dist.Mean()), tolerance, "rate %d", rate)
	}
}

func TestShouldSample_Observer(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	s := mustSettings(t, Config{SampleRate: Ptr(SampleResolution)}, &fixedRand{})
	s.WithObserver(rec)

	s.ShouldSample("web", "", "", "")
	s.ShouldSample("web", "", "", "")

	require.Len(t, rec.calls, 3)
	assert.Equal(t, OperationRebuild, rec.calls[0].Operation)
	assert.Equal(t, OperationSample, rec.calls[1].Operation)
	assert.Equal(t, observability.ComponentSettings, rec.calls[1].Component)
	assert.Equal(t, "web", rec.calls[1].Resource)
	assert.Equal(t, string(SourceNewTraceForced), rec.calls[1].SubResource)
	assert.True(t, rec.calls[2].Sampled())
}

func TestDecision_Code(t *testing.T) {
	t.Parallel()
	d := Decision{Rate: 300_000, Source: SourceNewTraceRate}
	assert.Equal(t, uint32(4)<<24|300_000, d.Code())
}

type recorder struct {
	mu    sync.Mutex
	calls []observability.OperationContext
}

func (r *recorder) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ctx)
}

func ptrMode(m TraceMode) *TraceMode { return &m }
