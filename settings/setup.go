package settings

import (
	"math/rand/v2"
	"sync"

	"github.com/zoobzio/clockz"

	"github.com/aalemi-dev/oboe/metadata"
	"github.com/aalemi-dev/oboe/observability"
)

// Rand is the random source of the sampling draw. Implementations used by a
// shared Settings must be safe for concurrent use.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the math/rand/v2 top level source, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// ForeignFunc reports whether a parsed inbound identifier belongs to
// another trace origin than the one owning appToken. Foreign identifiers
// start a new trace instead of continuing.
type ForeignFunc func(inbound metadata.Metadata, appToken string) bool

// Settings is the sampling configuration shared by every unit of work of a
// process. All methods are safe for concurrent use.
//
// Setters only record the new value and mark the settings dirty. The next
// decision rebuilds the compiled Handle under the same lock, so a rebuild
// always sees one consistent configuration and the dirty flag is cleared
// only once that rebuild is done.
type Settings struct {
	mu sync.Mutex

	traceMode  TraceMode
	sampleRate int
	layer      string
	appToken   string
	overrides  map[string]LayerOverride
	limiter    *urlLimiter

	changed  bool
	handle   *Handle
	rebuilds uint64

	// set once before concurrent use
	rng      Rand
	foreign  ForeignFunc
	clock    clockz.Clock
	observer observability.Observer
}

// New creates Settings from cfg. Validation happens before anything is
// applied.
//
// Example:
//
//	s, err := settings.New(settings.Config{
//	    TraceMode:  "always",
//	    SampleRate: settings.Ptr(100_000),
//	    Layer:      "web",
//	})
//	if err != nil {
//	    return err
//	}
//	d := s.ShouldSample("", r.Header.Get("X-Trace"), "", r.URL.Path)
func New(cfg Config) (*Settings, error) {
	s := newSettings()
	if err := s.Apply(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func newSettings() *Settings {
	return &Settings{
		traceMode:  TraceAlways,
		sampleRate: RateUnset,
		overrides:  map[string]LayerOverride{},
		changed:    true,
		rng:        globalRand{},
		clock:      clockz.RealClock,
	}
}

// WithRand replaces the random source of the sampling draw. Call it before
// the Settings is shared.
func (s *Settings) WithRand(r Rand) *Settings {
	if r != nil {
		s.rng = r
	}
	return s
}

// WithForeignCheck installs the check that decides whether an inbound
// identifier is foreign. Call it before the Settings is shared.
func (s *Settings) WithForeignCheck(f ForeignFunc) *Settings {
	s.foreign = f
	return s
}

// WithObserver attaches an observer notified of every decision and rebuild.
// Call it before the Settings is shared.
func (s *Settings) WithObserver(o observability.Observer) *Settings {
	s.observer = o
	return s
}

// WithClock replaces the clock used by the rate limiter.
func (s *Settings) WithClock(c clockz.Clock) *Settings {
	if c == nil {
		return s
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
	if s.limiter != nil {
		// buckets restart against the new clock
		if lim, err := newURLLimiter(s.limiter.cfg, c); err == nil {
			s.limiter = lim
			s.changed = true
		}
	}
	return s
}

// Apply validates cfg and, only if all of it is valid, replaces the whole
// configuration. Per-layer overrides are replaced as a set.
func (s *Settings) Apply(cfg Config) error {
	mode, err := ParseTraceMode(cfg.TraceMode)
	if err != nil {
		return err
	}

	rate := RateUnset
	if cfg.SampleRate != nil {
		rate = *cfg.SampleRate
		if err := validateSampleRate(rate); err != nil {
			return err
		}
	}

	if cfg.AppToken != "" {
		if err := validateAppToken(cfg.AppToken); err != nil {
			return err
		}
	}

	overrides := make(map[string]LayerOverride, len(cfg.Layers))
	for name, lc := range cfg.Layers {
		if name == "" {
			return ErrEmptyLayer
		}
		o, err := lc.Override()
		if err != nil {
			return err
		}
		overrides[name] = o
	}

	rl, err := cfg.RateLimit.withDefaults()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var limiter *urlLimiter
	if rl.Enabled {
		if s.limiter != nil && s.limiter.cfg == rl {
			limiter = s.limiter
		} else if limiter, err = newURLLimiter(rl, s.clock); err != nil {
			return err
		}
	}

	s.traceMode = mode
	s.sampleRate = rate
	if cfg.Layer != "" {
		s.layer = cfg.Layer
	}
	if cfg.AppToken != "" {
		s.appToken = cfg.AppToken
	}
	s.overrides = overrides
	s.limiter = limiter
	s.changed = true
	return nil
}

// SetTraceMode sets the global trace mode.
func (s *Settings) SetTraceMode(m TraceMode) error {
	if err := validateTraceMode(m); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traceMode = m
	s.changed = true
	return nil
}

// SetSampleRate sets the new-trace sample rate, in [0, SampleResolution],
// or RateUnset for the default.
func (s *Settings) SetSampleRate(rate int) error {
	if err := validateSampleRate(rate); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleRate = rate
	s.changed = true
	return nil
}

// SetLayer sets the current layer name. The last value wins.
func (s *Settings) SetLayer(layer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layer = layer
	s.changed = true
}

// SetAppToken sets the credential token, which must be exactly AppTokenLen
// characters.
func (s *Settings) SetAppToken(token string) error {
	if err := validateAppToken(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appToken = token
	s.changed = true
	return nil
}

// SetLayerOverride replaces the policy override of one layer.
func (s *Settings) SetLayerOverride(layer string, o LayerOverride) error {
	if layer == "" {
		return ErrEmptyLayer
	}
	if err := o.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[layer] = o
	s.changed = true
	return nil
}

// ClearLayerOverride removes the override of one layer, if any.
func (s *Settings) ClearLayerOverride(layer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overrides[layer]; ok {
		delete(s.overrides, layer)
		s.changed = true
	}
}

// TraceMode returns the global trace mode.
func (s *Settings) TraceMode() TraceMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceMode
}

// SampleRate returns the configured rate, possibly RateUnset.
func (s *Settings) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// EffectiveSampleRate returns the rate used by decisions.
func (s *Settings) EffectiveSampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return effectiveRate(s.sampleRate)
}

// Layer returns the current layer name.
func (s *Settings) Layer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer
}

// AppToken returns the credential token.
func (s *Settings) AppToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appToken
}

// Flags returns the flags derived from the global trace mode.
func (s *Settings) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceMode.Flags()
}

// IsDirty reports whether a setter ran since the last rebuild.
func (s *Settings) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// RebuildCount returns how many times the Handle has been compiled.
func (s *Settings) RebuildCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuilds
}

// Handle returns the compiled handle, rebuilding it first if dirty.
func (s *Settings) Handle() *Handle {
	h, rebuilt := s.acquire("")
	if rebuilt {
		s.observeRebuild(h)
	}
	return h
}

func effectiveRate(rate int) int {
	if rate == RateUnset {
		return DefaultSampleRate
	}
	return rate
}
