package reporter

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/observability"
)

// ReporterParams are the dependencies of NewReporterWithDI.
type ReporterParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewReporterWithDI creates the configured reporter with the optional
// logger and observer found in the container.
func NewReporterWithDI(p ReporterParams) (*Client, error) {
	return New(p.Config, WithLogger(p.Logger), WithObserver(p.Observer))
}

// FXModule provides *Client and Reporter from a reporter.Config and closes
// the reporter on stop.
var FXModule = fx.Module("reporter",
	fx.Provide(
		NewReporterWithDI,
		fx.Annotate(
			func(c *Client) Reporter { return c },
			fx.As(new(Reporter)),
		),
	),
	fx.Invoke(RegisterReporterLifecycle),
)

// RegisterReporterLifecycle closes the reporter when the application stops.
func RegisterReporterLifecycle(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
}
