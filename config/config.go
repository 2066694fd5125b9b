package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/aalemi-dev/oboe/errs"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/metrics"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
)

// EnvPrefix prefixes every environment override, e.g.
// OBOE_SETTINGS_SAMPLE_RATE or OBOE_REPORTER_UDP_ADDRESS.
const EnvPrefix = "OBOE"

// ErrInvalidConfig is returned for files that do not decode or validate.
var ErrInvalidConfig = fmt.Errorf("%w: invalid configuration", errs.ErrInvalidArgument)

// Config is the whole oboe configuration.
//
// Example YAML:
//
//	settings:
//	  trace_mode: always
//	  sample_rate: 300000
//	  layer: web
//	reporter:
//	  type: udp
//	  udp:
//	    address: 127.0.0.1:7831
//	logger:
//	  level: info
//	metrics:
//	  application_metrics_address: ":9091"
type Config struct {
	Settings settings.Config `yaml:"settings" envconfig:"SETTINGS"`
	Reporter reporter.Config `yaml:"reporter" envconfig:"REPORTER"`
	Logger   logger.Config   `yaml:"logger" envconfig:"LOGGER"`
	Metrics  metrics.Config  `yaml:"metrics" envconfig:"METRICS"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Reporter: reporter.Config{Type: reporter.DefaultType},
		Logger:   logger.Config{Level: logger.Info, ServiceName: "oboe"},
	}
}

// Load reads the YAML file at path on top of Default, applies the OBOE_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates it, without looking
// at the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the settings and reporter sections.
func (c *Config) Validate() error {
	if _, err := settings.New(c.Settings); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := c.Reporter.Validate(); err != nil {
		return fmt.Errorf("reporter: %w", err)
	}
	return nil
}
