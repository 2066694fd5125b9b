package tracing

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
)

// FXModule provides a *Client from the *settings.Settings and
// reporter.Reporter found in the container.
//
//	app := fx.New(
//	    config.Module("/etc/oboe.yaml"),
//	    logger.FXModule,
//	    settings.FXModule,
//	    reporter.FXModule,
//	    tracing.FXModule,
//	)
var FXModule = fx.Module("tracing",
	fx.Provide(NewClientWithDI),
)

// ClientParams are the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Settings *settings.Settings
	Reporter reporter.Reporter
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates the tracing client for the fx container.
func NewClientWithDI(p ClientParams) (*Client, error) {
	return NewClient(p.Settings, p.Reporter, p.Logger, WithObserver(p.Observer))
}
