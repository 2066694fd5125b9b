package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelpropagation "go.opentelemetry.io/otel/propagation"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aalemi-dev/oboe/errs"
	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/metadata"
	"github.com/aalemi-dev/oboe/observability"
	"github.com/aalemi-dev/oboe/propagation"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
	"github.com/aalemi-dev/oboe/tracectx"
)

const inbound = "2B0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456701"

type reported struct {
	md metadata.Metadata
	ev *event.Event
}

// capture records every report made through a mock reporter.
type capture struct {
	mu     sync.Mutex
	events []reported
}

func (c *capture) report(_ context.Context, md metadata.Metadata, e *event.Event) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, reported{md: md, ev: e})
	return 100, nil
}

func (c *capture) get(i int) reported {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[i]
}

func (c *capture) all() []reported {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]reported(nil), c.events...)
}

func newClient(t *testing.T, cfg settings.Config, reports int, opts ...Option) (*Client, *capture) {
	t.Helper()
	s, err := settings.New(cfg)
	require.NoError(t, err)

	rep := reporter.NewMockReporter(gomock.NewController(t))
	c := &capture{}
	if reports > 0 {
		rep.EXPECT().Report(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(c.report).Times(reports)
	}

	client, err := NewClient(s, rep, logger.NewWithZap(zap.NewNop(), true), opts...)
	require.NoError(t, err)
	return client, c
}

var always = settings.Config{TraceMode: "always", SampleRate: settings.Ptr(settings.SampleResolution)}

func lookup(t *testing.T, e *event.Event, key string) any {
	t.Helper()
	v, ok := e.Lookup(key)
	require.True(t, ok, key)
	return v
}

func TestStartLayer_NewTrace(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, always, 1)

	ctx, d, err := client.StartLayer(context.Background(), StartOptions{
		Layer: "web",
		URL:   "/checkout",
		KVs:   []any{"Protocol", "ws"},
	})
	require.NoError(t, err)
	assert.True(t, d.Sampled)
	assert.False(t, d.Continued)
	assert.Equal(t, settings.SourceNewTraceForced, d.Source)
	assert.Equal(t, "web", LayerFromContext(ctx))

	entry := rec.get(0)
	assert.Equal(t, event.LabelEntry, entry.ev.Label())
	assert.Equal(t, "web", entry.ev.Layer())
	assert.Equal(t, int64(settings.SampleResolution), lookup(t, entry.ev, event.KeySampleRate))
	assert.Equal(t, int64(settings.SourceNewTraceForced.Code()), lookup(t, entry.ev, event.KeySampleSource))
	assert.Equal(t, "/checkout", lookup(t, entry.ev, KeyURL))
	assert.Equal(t, "ws", lookup(t, entry.ev, "Protocol"))
	assert.Empty(t, entry.ev.Edges())
	assert.True(t, entry.md.Equal(entry.ev.Metadata()))

	tc, ok := tracectx.FromContext(ctx)
	require.True(t, ok)
	assert.True(t, tc.IsSampled())
	assert.Equal(t, entry.ev.Metadata().String(), tc.String())
}

func TestStartLayer_ContinuesInbound(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, settings.Config{TraceMode: "through"}, 1)

	ctx, d, err := client.StartLayer(context.Background(), StartOptions{Layer: "api", XTrace: inbound})
	require.NoError(t, err)
	assert.True(t, d.Continued)
	assert.Equal(t, settings.SourceContinuedTrace, d.Source)

	in, err := metadata.Parse(inbound)
	require.NoError(t, err)

	entry := rec.get(0)
	assert.True(t, entry.md.Equal(in))
	assert.True(t, entry.ev.Metadata().SameTrace(in))
	assert.NotEqual(t, in.OpID, entry.ev.Metadata().OpID)
	assert.Equal(t, []metadata.OpID{in.OpID}, entry.ev.Edges())

	md := tracectx.MetadataFromContext(ctx)
	assert.True(t, md.Equal(entry.ev.Metadata()))
}

func TestStartLayer_UnsampledPropagatesWithoutReporting(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, settings.Config{TraceMode: "never"}, 0)

	ctx, d, err := client.StartLayer(context.Background(), StartOptions{Layer: "web", XTrace: inbound})
	require.NoError(t, err)
	assert.False(t, d.Sampled)

	tc, ok := tracectx.FromContext(ctx)
	require.True(t, ok)
	assert.True(t, tc.IsValid())
	assert.False(t, tc.IsSampled())

	require.NoError(t, client.ReportInfo(ctx, "k", "v"))
	xtrace, err := client.EndLayer(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.String(), xtrace)
}

func TestStartLayer_NewTraceNotSampled(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, settings.Config{TraceMode: "through"}, 0)

	ctx, d, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	assert.Equal(t, settings.SourceNewTraceNotPermitted, d.Source)

	md := tracectx.MetadataFromContext(ctx)
	assert.True(t, md.IsValid())
	assert.False(t, md.Sampled)
}

func TestFlow_EventsAreChained(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, always, 4)

	ctx, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	require.NoError(t, client.ReportInfo(ctx, "Query", "SELECT 1"))
	require.NoError(t, client.ReportError(ctx, errors.New("boom")))
	require.NoError(t, client.ReportError(ctx, nil))
	xtrace, err := client.EndLayer(ctx, "Status", 200)
	require.NoError(t, err)

	labels := []string{event.LabelEntry, event.LabelInfo, event.LabelError, event.LabelExit}
	for i, label := range labels {
		r := rec.get(i)
		assert.Equal(t, label, r.ev.Label())
		assert.Equal(t, "web", r.ev.Layer())
		if i > 0 {
			prev := rec.get(i - 1).ev.Metadata()
			assert.Equal(t, []metadata.OpID{prev.OpID}, r.ev.Edges(), label)
			assert.True(t, r.md.Equal(prev), label)
		}
	}

	assert.Equal(t, "SELECT 1", lookup(t, rec.get(1).ev, "Query"))
	assert.Equal(t, "boom", lookup(t, rec.get(2).ev, KeyErrorMsg))
	assert.Equal(t, "*errors.errorString", lookup(t, rec.get(2).ev, KeyErrorClass))
	assert.Equal(t, int64(200), lookup(t, rec.get(3).ev, "Status"))
	assert.Equal(t, rec.get(3).ev.Metadata().String(), xtrace)
}

func TestStartLayer_Nested(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, always, 4)

	outer, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)

	inner, d, err := client.StartLayer(outer, StartOptions{Layer: "db"})
	require.NoError(t, err)
	assert.True(t, d.Sampled)
	assert.True(t, d.Continued)
	assert.Equal(t, "db", LayerFromContext(inner))
	assert.Equal(t, "web", LayerFromContext(outer))

	_, err = client.EndLayer(inner)
	require.NoError(t, err)
	_, err = client.EndLayer(outer)
	require.NoError(t, err)

	dbEntry := rec.get(1).ev
	assert.Equal(t, "db", dbEntry.Layer())
	_, hasRate := dbEntry.Lookup(event.KeySampleRate)
	assert.False(t, hasRate)

	webEntry := rec.get(0).ev.Metadata()
	assert.Equal(t, []metadata.OpID{webEntry.OpID}, dbEntry.Edges())
	assert.True(t, rec.get(1).md.Equal(webEntry))

	assert.Equal(t, "db", rec.get(2).ev.Layer())
	webExit := rec.get(3).ev
	assert.Equal(t, "web", webExit.Layer())
	assert.Equal(t, []metadata.OpID{webEntry.OpID}, webExit.Edges())
}

func TestStartLayer_NestedFromConcurrentGoroutines(t *testing.T) {
	t.Parallel()
	const workers = 8
	client, rec := newClient(t, always, 2+workers*3)

	outer, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	webEntry := rec.get(0).ev.Metadata()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, d, err := client.StartLayer(outer, StartOptions{Layer: "db"})
			assert.NoError(t, err)
			assert.True(t, d.Sampled)
			assert.NoError(t, client.ReportInfo(ctx, "Query", "SELECT 1"))
			_, err = client.EndLayer(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, tracectx.MetadataFromContext(outer).Equal(webEntry))
	_, err = client.EndLayer(outer)
	require.NoError(t, err)

	entries := 0
	for _, r := range rec.all() {
		if r.ev.Layer() == "db" && r.ev.Label() == event.LabelEntry {
			entries++
			assert.Equal(t, []metadata.OpID{webEntry.OpID}, r.ev.Edges())
		}
	}
	assert.Equal(t, workers, entries)
}

func TestStartLayer_NestedLayerUnderNever(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, settings.Config{
		TraceMode:  "always",
		SampleRate: settings.Ptr(settings.SampleResolution),
		Layers:     map[string]settings.LayerConfig{"db": {TraceMode: "never"}},
	}, 2)

	outer, d, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	require.True(t, d.Sampled)

	inner, d, err := client.StartLayer(outer, StartOptions{Layer: "db"})
	require.NoError(t, err)
	assert.False(t, d.Sampled)
	assert.Equal(t, settings.SourceTracingDisabled, d.Source)
	assert.False(t, tracectx.MetadataFromContext(inner).Sampled)
	require.NoError(t, client.ReportInfo(inner, "Query", "SELECT 1"))

	assert.True(t, tracectx.MetadataFromContext(outer).Sampled)
	_, err = client.EndLayer(outer)
	require.NoError(t, err)
	assert.Len(t, rec.all(), 2)
}

func TestStartLayer_ExtractedContextIsDecided(t *testing.T) {
	t.Parallel()

	extracted := func() context.Context {
		h := http.Header{}
		h.Set(propagation.HeaderName, inbound)
		return propagation.Composite().Extract(context.Background(), otelpropagation.HeaderCarrier(h))
	}

	never, _ := newClient(t, settings.Config{TraceMode: "never"}, 0)
	ctx, d, err := never.StartLayer(extracted(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	assert.False(t, d.Sampled)
	assert.Equal(t, settings.SourceTracingDisabled, d.Source)
	assert.False(t, tracectx.MetadataFromContext(ctx).Sampled)

	through, rec := newClient(t, settings.Config{TraceMode: "through"}, 1)
	_, d, err = through.StartLayer(extracted(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	assert.True(t, d.Sampled)
	assert.True(t, d.Continued)
	assert.Equal(t, settings.SourceContinuedTrace, d.Source)

	in, err := metadata.Parse(inbound)
	require.NoError(t, err)
	entry := rec.get(0).ev
	assert.Equal(t, []metadata.OpID{in.OpID}, entry.Edges())
	_, hasRate := entry.Lookup(event.KeySampleRate)
	assert.True(t, hasRate)
}

func TestStartLayer_NestedInheritsUnsampled(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, settings.Config{TraceMode: "through"}, 0)

	outer, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)

	_, d, err := client.StartLayer(outer, StartOptions{})
	require.NoError(t, err)
	assert.False(t, d.Sampled)
	assert.Equal(t, "web", d.Layer)
}

func TestStartLayer_ReportError(t *testing.T) {
	t.Parallel()
	s, err := settings.New(settings.Config{TraceMode: "through"})
	require.NoError(t, err)

	boom := errors.New("collector down")
	rep := reporter.NewMockReporter(gomock.NewController(t))
	rep.EXPECT().Report(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, boom)

	core, logs := observer.New(zap.WarnLevel)
	client, err := NewClient(s, rep, logger.NewWithZap(zap.New(core), false))
	require.NoError(t, err)

	ctx, d, err := client.StartLayer(context.Background(), StartOptions{Layer: "web", XTrace: inbound})
	require.ErrorIs(t, err, boom)
	assert.True(t, d.Sampled)

	md := tracectx.MetadataFromContext(ctx)
	assert.Equal(t, inbound, md.String())
	assert.Equal(t, 1, logs.FilterMessage("event not reported").Len())
}

func TestReport_NoContext(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, always, 0)

	assert.ErrorIs(t, client.ReportInfo(context.Background()), ErrNoContext)
	_, err := client.EndLayer(context.Background())
	assert.ErrorIs(t, err, ErrNoContext)
	assert.ErrorIs(t, err, errs.ErrState)
}

func TestReport_InvalidAnnotations(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, always, 1)

	ctx, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	before := tracectx.MetadataFromContext(ctx)

	err = client.ReportInfo(ctx, "odd")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	err = client.ReportEvent(ctx, "custom", "k", struct{}{})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	assert.True(t, before.Equal(tracectx.MetadataFromContext(ctx)))
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := NewClient(nil, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	rep := reporter.NewMockReporter(gomock.NewController(t))
	client, err := NewClient(nil, rep, nil)
	require.NoError(t, err)
	assert.Same(t, settings.Default(), client.Settings())
}

type recorder struct {
	mu    sync.Mutex
	calls []observability.OperationContext
}

func (r *recorder) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ctx)
}

func TestObserver(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	client, _ := newClient(t, always, 2, WithObserver(rec))

	ctx, _, err := client.StartLayer(context.Background(), StartOptions{Layer: "web"})
	require.NoError(t, err)
	_, err = client.EndLayer(ctx)
	require.NoError(t, err)
	_ = client.ReportInfo(context.Background())

	require.Len(t, rec.calls, 3)
	assert.Equal(t, observability.ComponentTracing, rec.calls[0].Component)
	assert.Equal(t, observability.OperationStart, rec.calls[0].Operation)
	assert.Equal(t, "web", rec.calls[0].Resource)
	assert.Equal(t, event.LabelEntry, rec.calls[0].SubResource)
	assert.True(t, rec.calls[0].Sampled())

	assert.Equal(t, observability.OperationEnd, rec.calls[1].Operation)
	assert.Equal(t, event.LabelExit, rec.calls[1].SubResource)

	assert.Equal(t, observability.OperationEvent, rec.calls[2].Operation)
	assert.ErrorIs(t, rec.calls[2].Error, ErrNoContext)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, settings.Config{TraceMode: "through"}, 2)

	var seen string
	h := client.Middleware("web")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = tracectx.MetadataFromContext(r.Context()).String()
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "http://shop.local/cart", nil)
	req.Header.Set("X-Trace", inbound)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	entry, exit := rec.get(0).ev, rec.get(1).ev
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, entry.Metadata().String(), seen)
	assert.Equal(t, seen, rr.Header().Get("X-Trace"))

	assert.Equal(t, "/cart", lookup(t, entry, KeyURL))
	assert.Equal(t, http.MethodPost, lookup(t, entry, KeyHTTPMethod))
	assert.Equal(t, "shop.local", lookup(t, entry, KeyHTTPHost))
	assert.Equal(t, int64(http.StatusCreated), lookup(t, exit, KeyStatus))
}

func TestMiddleware_HeaderNamesExitWhenHandlerWritesNothing(t *testing.T) {
	t.Parallel()
	client, rec := newClient(t, always, 2)

	h := client.Middleware("web")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-TV-Meta", "monitor-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, rec.get(1).ev.Metadata().String(), rr.Header().Get("X-Trace"))
	assert.Equal(t, "monitor-1", lookup(t, rec.get(0).ev, KeySyntheticID))
}
