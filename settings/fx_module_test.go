package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/settings"
)

type countingObserver struct{ n int }

func (c *countingObserver) ObserveOperation(observability.OperationContext) { c.n++ }

func TestFXModule_ProvidesSettings(t *testing.T) {
	t.Parallel()
	var s *settings.Settings
	obs := &countingObserver{}

	app := fxtest.New(t,
		settings.FXModule,
		fx.Provide(func() settings.Config {
			return settings.Config{TraceMode: "always", SampleRate: settings.Ptr(settings.SampleResolution), Layer: "fx"}
		}),
		fx.Provide(func() observability.Observer { return obs }),
		fx.Populate(&s),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, s)
	d := s.ShouldSample("", "", "", "")
	assert.True(t, d.Sampled)
	assert.Equal(t, "fx", d.Layer)
	assert.Equal(t, 2, obs.n)
}

func TestFXModule_InvalidConfigFailsStart(t *testing.T) {
	t.Parallel()
	var s *settings.Settings

	app := fx.New(
		settings.FXModule,
		fx.Provide(func() settings.Config { return settings.Config{TraceMode: "sometimes"} }),
		fx.Populate(&s),
		fx.NopLogger,
	)
	assert.Error(t, app.Err())
}
