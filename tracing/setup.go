package tracing

import (
	"fmt"

	"github.com/zoobzio/clockz"

	"github.com/aalemi-dev/oboe/errs"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
)

// Client drives the entry, info and exit events of traced units of work.
// It is safe for concurrent use; the trace context of each unit of work is
// carried by its context.Context.
type Client struct {
	settings *settings.Settings
	reporter reporter.Reporter
	logger   logger.Logger
	observer observability.Observer
	clock    clockz.Clock
}

// Option customizes a Client.
type Option func(*Client)

// WithObserver notifies o of every started layer, reported event and ended
// layer.
func WithObserver(o observability.Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithClock replaces the clock used to time operations for the observer.
func WithClock(clock clockz.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewClient creates a Client sampling with s and reporting to r. A nil s
// means settings.Default(). log may be nil.
//
//	client, err := tracing.NewClient(s, rep, log)
//	if err != nil {
//	    return err
//	}
//	ctx, _, err := client.StartLayer(ctx, tracing.StartOptions{
//	    Layer:  "web",
//	    XTrace: r.Header.Get("X-Trace"),
//	    URL:    r.URL.Path,
//	})
//	...
//	xtrace, err := client.EndLayer(ctx, "Status", 200)
func NewClient(s *settings.Settings, r reporter.Reporter, log logger.Logger, opts ...Option) (*Client, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reporter", errs.ErrInvalidArgument)
	}
	if s == nil {
		s = settings.Default()
	}
	c := &Client{
		settings: s,
		reporter: r,
		logger:   log,
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Settings returns the sampling settings of the client.
func (c *Client) Settings() *settings.Settings {
	return c.settings
}
