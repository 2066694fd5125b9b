package tracectx

import (
	"context"
	"fmt"

	"github.com/aalemi-dev/oboe/errs"
	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

// ErrNotInitialized is returned when an event is requested from a context
// that holds no valid Metadata.
var ErrNotInitialized = fmt.Errorf("%w: trace context not initialized", errs.ErrState)

// Context is the current position in a trace for one unit of work.
//
// A Context is not safe for concurrent use. Give every request, job or
// goroutine its own instance and pass it along with NewContext.
type Context struct {
	md metadata.Metadata
}

// New returns an empty, invalid Context.
func New() *Context {
	return &Context{}
}

// NewFromString returns a Context continuing the trace named by xtrace.
func NewFromString(xtrace string) (*Context, error) {
	c := New()
	if err := c.SetString(xtrace); err != nil {
		return nil, err
	}
	return c, nil
}

// Set replaces the held Metadata. Invalid Metadata is rejected and the
// context is left unchanged; use Clear to empty it.
func (c *Context) Set(md metadata.Metadata) error {
	if !md.IsValid() {
		return fmt.Errorf("%w: set invalid metadata", errs.ErrState)
	}
	c.md = md
	return nil
}

// SetString parses xtrace and replaces the held Metadata. On a parse
// failure the context is left unchanged.
func (c *Context) SetString(xtrace string) error {
	md, err := metadata.Parse(xtrace)
	if err != nil {
		return err
	}
	c.md = md
	return nil
}

// SetSampled sets the sampling flag of the held Metadata.
func (c *Context) SetSampled(sampled bool) {
	c.md.Sampled = sampled
}

// Get returns a copy of the held Metadata.
func (c *Context) Get() metadata.Metadata {
	return c.md
}

// Clear resets the context to the empty Metadata.
func (c *Context) Clear() {
	c.md = metadata.Metadata{}
}

// IsValid reports whether the held Metadata is valid.
func (c *Context) IsValid() bool {
	return c.md.IsValid()
}

// IsSampled reports whether the held Metadata is valid and sampled.
func (c *Context) IsSampled() bool {
	return c.md.IsValid() && c.md.Sampled
}

// String returns the X-Trace form of the held Metadata, or "".
func (c *Context) String() string {
	return c.md.String()
}

// StartTrace gives the context a brand new task id and op id and returns
// the first event of that trace. The sampling flag is kept. This is the only
// operation that starts a new trace rather than continuing one.
func (c *Context) StartTrace() (*event.Event, error) {
	md, err := metadata.Random()
	if err != nil {
		return nil, err
	}
	md.Sampled = c.md.Sampled

	ev, err := event.New(md, false)
	if err != nil {
		return nil, err
	}
	c.md = md
	return ev, nil
}

// CreateEvent returns an event at a new point of the current trace. The
// context itself does not move; call Advance once the event is reported.
func (c *Context) CreateEvent() (*event.Event, error) {
	if !c.md.IsValid() {
		return nil, ErrNotInitialized
	}
	return event.New(c.md, true)
}

// Advance moves the context to ev, so later events are linked to it.
// ev must belong to the current trace.
func (c *Context) Advance(ev *event.Event) error {
	if ev == nil {
		return event.ErrInvalidMetadata
	}
	next := ev.Metadata()
	if c.md.IsValid() && !c.md.SameTrace(next) {
		return fmt.Errorf("%w: advance to another trace", errs.ErrInvalidArgument)
	}
	return c.Set(next)
}

// Copy returns an independent Context at the same position, for handing to
// a new goroutine.
func (c *Context) Copy() *Context {
	return &Context{md: c.md}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying tc.
func NewContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the Context carried by ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok && tc != nil
}

// MetadataFromContext returns the Metadata of the Context carried by ctx,
// or the empty Metadata.
func MetadataFromContext(ctx context.Context) metadata.Metadata {
	tc, ok := FromContext(ctx)
	if !ok {
		return metadata.Metadata{}
	}
	return tc.Get()
}
