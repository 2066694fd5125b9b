package config

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/metrics"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
)

// Sections splits a Config into the per-package configs consumed by the
// settings, reporter, logger and metrics modules.
type Sections struct {
	fx.Out

	Settings settings.Config
	Reporter reporter.Config
	Logger   logger.Config
	Metrics  metrics.Config
}

// Split provides the sections of cfg.
func Split(cfg *Config) Sections {
	return Sections{
		Settings: cfg.Settings,
		Reporter: cfg.Reporter,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	}
}

// Module loads the configuration at path and provides *Config and its
// sections.
//
//	app := fx.New(
//	    config.Module("/etc/oboe.yaml"),
//	    logger.FXModule,
//	    settings.FXModule,
//	    reporter.FXModule,
//	)
func Module(path string) fx.Option {
	return fx.Module("config",
		fx.Provide(
			func() (*Config, error) { return Load(path) },
			Split,
		),
	)
}

// WatchModule re-applies the settings section of path to the container's
// *settings.Settings whenever the file changes.
func WatchModule(path string) fx.Option {
	return fx.Module("config-watcher",
		fx.Invoke(func(lc fx.Lifecycle, s *settings.Settings, log logger.Logger) error {
			w, err := NewWatcher(path, s, log)
			if err != nil {
				return err
			}
			RegisterWatcherLifecycle(lc, w)
			return nil
		}),
	)
}

// RegisterWatcherLifecycle starts w with the application and closes it on
// stop.
func RegisterWatcherLifecycle(lc fx.Lifecycle, w *Watcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// the start context is cancelled once startup completes
			return w.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
}
