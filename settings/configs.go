package settings

import "fmt"

// Default values for the per-URL rate limiter.
const (
	DefaultRateLimitCacheSize = 1024
)

// Config defines the sampling configuration as it appears in a config file.
//
// Example YAML:
//
//	trace_mode: always
//	sample_rate: 300000
//	layer: web
//	app_token: 0123456789abcdef0123456789abcdef
//	layers:
//	  db:
//	    sample_rate: 1000000
//	  cache:
//	    trace_mode: through
//	rate_limit:
//	  enabled: true
//	  per_second: 50
//	  burst: 100
type Config struct {
	// TraceMode is "never", "always" or "through". Empty means "always".
	//
	// This setting can be configured via:
	//   - YAML configuration with the "trace_mode" key
	//   - Environment variable OBOE_SETTINGS_TRACE_MODE
	TraceMode string `yaml:"trace_mode" envconfig:"TRACE_MODE"`

	// SampleRate is the new-trace sampling ratio out of SampleResolution.
	// nil means DefaultSampleRate.
	SampleRate *int `yaml:"sample_rate" envconfig:"SAMPLE_RATE"`

	// Layer is the default layer name used when a decision is requested
	// without one.
	Layer string `yaml:"layer" envconfig:"LAYER"`

	// AppToken is the 32 character credential token. Empty leaves it unset.
	AppToken string `yaml:"app_token" envconfig:"APP_TOKEN"`

	// Layers holds per-layer overrides keyed by layer name.
	Layers map[string]LayerConfig `yaml:"layers" ignored:"true"`

	// RateLimit configures the optional per-URL token bucket.
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// LayerConfig overrides the global policy for one layer.
type LayerConfig struct {
	TraceMode  string   `yaml:"trace_mode"`
	SampleRate *int     `yaml:"sample_rate"`
	Flags      []string `yaml:"flags"`
}

// RateLimitConfig bounds how many probabilistically sampled traces may
// start per second for one URL.
type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled" envconfig:"ENABLED"`
	PerSecond float64 `yaml:"per_second" envconfig:"PER_SECOND"`

	// Burst defaults to PerSecond rounded up, at least 1.
	Burst int `yaml:"burst" envconfig:"BURST"`

	// CacheSize bounds how many URLs keep their own bucket.
	CacheSize int `yaml:"cache_size" envconfig:"CACHE_SIZE"`
}

// LayerOverride replaces parts of the global policy for one layer. Nil
// fields keep the global value. A global TraceNever is never overridden.
type LayerOverride struct {
	TraceMode  *TraceMode
	Flags      *Flags
	SampleRate *int
}

func (o LayerOverride) validate() error {
	if o.TraceMode != nil {
		if err := validateTraceMode(*o.TraceMode); err != nil {
			return err
		}
	}
	if o.SampleRate != nil {
		if err := validateSampleRate(*o.SampleRate); err != nil {
			return err
		}
	}
	return nil
}

// Override converts a LayerConfig into a validated LayerOverride.
func (lc LayerConfig) Override() (LayerOverride, error) {
	var o LayerOverride
	if lc.TraceMode != "" {
		m, err := ParseTraceMode(lc.TraceMode)
		if err != nil {
			return LayerOverride{}, err
		}
		o.TraceMode = &m
	}
	if len(lc.Flags) > 0 {
		f, err := ParseFlags(lc.Flags)
		if err != nil {
			return LayerOverride{}, err
		}
		o.Flags = &f
	}
	if lc.SampleRate != nil {
		rate := *lc.SampleRate
		o.SampleRate = &rate
	}
	if err := o.validate(); err != nil {
		return LayerOverride{}, err
	}
	return o, nil
}

func (c RateLimitConfig) withDefaults() (RateLimitConfig, error) {
	if !c.Enabled {
		return c, nil
	}
	if c.PerSecond <= 0 {
		return c, fmt.Errorf("%w: per_second must be positive, got %v", ErrInvalidRateLimit, c.PerSecond)
	}
	if c.Burst <= 0 {
		c.Burst = int(c.PerSecond)
		if float64(c.Burst) < c.PerSecond {
			c.Burst++
		}
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultRateLimitCacheSize
	}
	return c, nil
}

// Ptr returns a pointer to v. It helps fill optional integer fields.
//
//	cfg := settings.Config{SampleRate: settings.Ptr(settings.SampleResolution)}
func Ptr(v int) *int {
	return &v
}
