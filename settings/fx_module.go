package settings

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/oboe/observability"
)

// FXModule provides a *Settings built from a settings.Config found in the
// container. An observability.Observer, if provided, receives every
// decision.
//
//	app := fx.New(
//	    settings.FXModule,
//	    fx.Provide(func() settings.Config {
//	        return settings.Config{TraceMode: "always", Layer: "web"}
//	    }),
//	)
var FXModule = fx.Module("settings",
	fx.Provide(NewSettingsWithDI),
)

// SettingsParams holds the dependencies of NewSettingsWithDI.
type SettingsParams struct {
	fx.In

	Config   Config
	Observer observability.Observer `optional:"true"`
}

// NewSettingsWithDI builds Settings for the fx container.
func NewSettingsWithDI(params SettingsParams) (*Settings, error) {
	s, err := New(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		s.WithObserver(params.Observer)
	}
	return s, nil
}
