package reporter

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

const (
	instrumentationName = "github.com/aalemi-dev/oboe/reporter"
	attrPrefix          = "oboe."

	// keyErrorMsg is the annotation describing an error event.
	keyErrorMsg = "ErrorMsg"
)

// otlpTransport bridges events into OpenTelemetry: every event becomes a
// zero length span at its Timestamp_u, carrying the annotations as
// attributes.
type otlpTransport struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	clock    clockz.Clock
}

func newOTLPTransport(cfg OTLPConfig, exporter sdktrace.SpanExporter, clock clockz.Clock) (*otlpTransport, error) {
	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		)),
	}

	if exporter != nil {
		options = append(options, sdktrace.WithSyncer(exporter))
	} else {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.URLPath != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithURLPath(cfg.URLPath))
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			clientOpts = append(clientOpts, otlptracehttp.WithHeaders(cfg.Headers))
		}

		exp, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(options...)
	return &otlpTransport{provider: tp, tracer: tp.Tracer(instrumentationName), clock: clock}, nil
}

func (o *otlpTransport) send(ctx context.Context, _ metadata.Metadata, e *event.Event, payload []byte) (int, error) {
	at := o.clock.Now()
	if v, ok := e.Lookup(event.KeyTimestamp); ok {
		if us, ok := v.(int64); ok {
			at = time.UnixMicro(us)
		}
	}

	_, span := o.tracer.Start(ctx, spanName(e),
		trace.WithTimestamp(at),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(eventAttributes(e)...),
	)
	if e.Label() == event.LabelError {
		msg, _ := e.Lookup(keyErrorMsg)
		desc, _ := msg.(string)
		span.SetStatus(codes.Error, desc)
	}
	span.End(trace.WithTimestamp(at))
	return len(payload), nil
}

func (o *otlpTransport) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return o.provider.Shutdown(ctx)
}

// spanName is "<layer> <label>", or whichever of the two is set.
func spanName(e *event.Event) string {
	layer, label := e.Layer(), e.Label()
	switch {
	case layer != "" && label != "":
		return layer + " " + label
	case layer != "":
		return layer
	case label != "":
		return label
	default:
		return "event"
	}
}

func eventAttributes(e *event.Event) []attribute.KeyValue {
	md := e.Metadata()
	attrs := []attribute.KeyValue{
		attribute.String(attrPrefix+"x_trace", md.String()),
		attribute.String(attrPrefix+"task_id", md.TaskIDString()),
		attribute.String(attrPrefix+"op_id", md.OpIDString()),
	}

	if edges := e.Edges(); len(edges) > 0 {
		ops := make([]string, len(edges))
		for i, op := range edges {
			ops[i] = op.String()
		}
		attrs = append(attrs, attribute.StringSlice(attrPrefix+"edges", ops))
	}

	for _, kv := range e.Info() {
		key := attribute.Key(attrPrefix + kv.Key)
		switch v := kv.Value.(type) {
		case string:
			attrs = append(attrs, key.String(v))
		case bool:
			attrs = append(attrs, key.Bool(v))
		case int64:
			attrs = append(attrs, key.Int64(v))
		case float64:
			attrs = append(attrs, key.Float64(v))
		case []byte:
			attrs = append(attrs, key.String(hex.EncodeToString(v)))
		}
	}
	return attrs
}
