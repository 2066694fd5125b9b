package reporter

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/metadata"
	"github.com/aalemi-dev/oboe/observability"
)

// Client is a Reporter over one transport. It is safe for concurrent use.
type Client struct {
	kind      string
	transport transport
	encode    func(*event.Event) ([]byte, error)

	clock    clockz.Clock
	hostname string
	pid      int

	observer observability.Observer
	logger   logger.Logger

	closed atomic.Bool
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	observer     observability.Observer
	logger       logger.Logger
	clock        clockz.Clock
	kafkaWriter  MessageWriter
	putter       ObjectPutter
	spanExporter sdktrace.SpanExporter
}

// WithObserver notifies o of every report.
func WithObserver(o observability.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger logs failed reports, and successful ones at debug level.
func WithLogger(l logger.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithClock replaces the clock used for Timestamp_u and report durations.
func WithClock(c clockz.Clock) Option {
	return func(opts *options) { opts.clock = c }
}

// WithKafkaWriter replaces the kafka-go writer of a kafka reporter.
func WithKafkaWriter(w MessageWriter) Option {
	return func(opts *options) { opts.kafkaWriter = w }
}

// WithObjectPutter replaces the minio client of a minio reporter.
func WithObjectPutter(p ObjectPutter) Option {
	return func(opts *options) { opts.putter = p }
}

// WithSpanExporter replaces the OTLP exporter of an otlp reporter. Spans are
// then exported synchronously.
func WithSpanExporter(e sdktrace.SpanExporter) Option {
	return func(opts *options) { opts.spanExporter = e }
}

// New creates the reporter selected by cfg.Type.
//
//	rep, err := reporter.New(reporter.Config{
//	    Type: reporter.TypeUDP,
//	    UDP:  reporter.UDPConfig{Address: "127.0.0.1:7831"},
//	}, reporter.WithObserver(m))
//	if err != nil {
//	    return err
//	}
//	defer rep.Close()
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	o := options{clock: clockz.RealClock}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clockz.RealClock
	}

	hostname := cfg.Hostname
	if hostname == "" {
		if hostname, err = os.Hostname(); err != nil {
			hostname = "localhost"
		}
	}

	c := &Client{
		kind:     cfg.Type,
		encode:   encodeBSON,
		clock:    o.clock,
		hostname: hostname,
		pid:      os.Getpid(),
		observer: o.observer,
		logger:   o.logger,
	}

	switch cfg.Type {
	case TypeUDP:
		c.transport, err = newUDPTransport(cfg.UDP)
	case TypeFile:
		if cfg.File.Format == FormatJSON {
			c.encode = encodeJSONLine
		}
		c.transport, err = newFileTransport(cfg.File)
	case TypeKafka:
		c.transport, err = newKafkaTransport(cfg.Kafka, o.kafkaWriter, o.logger)
	case TypeMinio:
		c.transport, err = newMinioTransport(cfg.Minio, o.putter)
	case TypeOTLP:
		c.transport, err = newOTLPTransport(cfg.OTLP, o.spanExporter, o.clock)
	case TypeNoop:
		c.transport = noopTransport{}
	}
	if err != nil {
		return nil, fmt.Errorf("create %s reporter: %w", cfg.Type, err)
	}
	return c, nil
}

// Type returns the reporter type.
func (c *Client) Type() string { return c.kind }

// Report implements Reporter.
//
// Timestamp_u, Hostname and PID are added to e unless already present.
// Transport errors are returned wrapped and are never retried.
func (c *Client) Report(ctx context.Context, md metadata.Metadata, e *event.Event) (int, error) {
	switch {
	case e == nil:
		return 0, ErrNilEvent
	case !md.IsValid():
		return 0, ErrInvalidMetadata
	case !md.SameTrace(e.Metadata()):
		return 0, ErrForeignEvent
	case c.closed.Load():
		return 0, ErrClosed
	}

	start := c.clock.Now()
	if err := c.stamp(e); err != nil {
		return 0, err
	}

	payload, err := c.encode(e)
	if err != nil {
		return 0, fmt.Errorf("encode event: %w", err)
	}

	n, err := c.transport.send(ctx, md, e, payload)
	if err != nil {
		err = fmt.Errorf("%s report: %w", c.kind, err)
	}

	c.observe(e, c.clock.Since(start), n, err)
	c.log(ctx, e, n, err)
	return n, err
}

// Close implements Reporter. Closing twice is a no-op.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.transport.close()
}

func (c *Client) stamp(e *event.Event) error {
	stamps := []event.KeyValue{
		{Key: event.KeyTimestamp, Value: c.clock.Now().UnixMicro()},
		{Key: event.KeyHostname, Value: c.hostname},
		{Key: event.KeyPID, Value: c.pid},
	}
	for _, kv := range stamps {
		if _, ok := e.Lookup(kv.Key); ok {
			continue
		}
		if err := e.AddInfo(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) log(ctx context.Context, e *event.Event, n int, err error) {
	if c.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"reporter": c.kind,
		"x_trace":  e.String(),
		"label":    e.Label(),
	}
	if err != nil {
		c.logger.ErrorWithContext(ctx, "event report failed", err, fields)
		return
	}
	fields["bytes"] = n
	c.logger.DebugWithContext(ctx, "event reported", nil, fields)
}

func encodeBSON(e *event.Event) ([]byte, error) {
	return e.MarshalBSON()
}

func encodeJSONLine(e *event.Event) ([]byte, error) {
	doc, err := e.Document()
	if err != nil {
		return nil, err
	}
	line, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
