package metrics

import (
	"strconv"

	"github.com/aalemi-dev/oboe/observability"
)

// Names of the oboe instruments.
const (
	SampleDecisionsName = "oboe_sample_decisions_total"
	SampleRateName      = "oboe_sample_rate"
	RebuildsName        = "oboe_settings_rebuilds_total"
	ReportsName         = "oboe_reports_total"
	ReportBytesName     = "oboe_report_bytes_total"
	ReportDurationName  = "oboe_report_duration_seconds"
	EventSizeName       = "oboe_event_size_bytes"
	TracingEventsName   = "oboe_tracing_events_total"
)

// Report results.
const (
	resultOK    = "ok"
	resultError = "error"
)

var reportBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}

type instruments struct {
	decisions      Counter
	sampleRate     Gauge
	rebuilds       Counter
	reports        Counter
	reportBytes    Counter
	reportDuration Histogram
	eventSize      Summary
	tracingEvents  Counter
}

func newInstruments(m *Metrics) *instruments {
	return &instruments{
		decisions: m.CreateCounter(SampleDecisionsName,
			"Sampling decisions by layer, decision source and outcome.",
			[]string{"layer", "source", "sampled"}),
		sampleRate: m.CreateGauge(SampleRateName,
			"Effective sample rate of the last decision per layer, out of 1000000.",
			[]string{"layer"}),
		rebuilds: m.CreateCounter(RebuildsName,
			"Rebuilds of the compiled sampling settings.", nil),
		reports: m.CreateCounter(ReportsName,
			"Events handed to a reporter, by reporter type and result.",
			[]string{"reporter", "result"}),
		reportBytes: m.CreateCounter(ReportBytesName,
			"Encoded event bytes written by reporter type.",
			[]string{"reporter"}),
		reportDuration: m.CreateHistogram(ReportDurationName,
			"Time spent in Report by reporter type.",
			[]string{"reporter"}, reportBuckets),
		eventSize: m.CreateSummary(EventSizeName,
			"Encoded event size by reporter type.",
			[]string{"reporter"}, map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}),
		tracingEvents: m.CreateCounter(TracingEventsName,
			"Events created by the tracing client, by layer and label.",
			[]string{"layer", "label"}),
	}
}

// ObserveOperation records a settings, reporter or tracing notification on
// the oboe instruments. Unknown operations are ignored.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	in := m.instruments
	switch ctx.Component {
	case observability.ComponentSettings:
		switch ctx.Operation {
		case observability.OperationSample:
			in.decisions.WithLabelValues(ctx.Resource, ctx.SubResource, strconv.FormatBool(ctx.Sampled())).Inc()
			if rate, ok := ctx.Metadata["rate"].(int); ok {
				in.sampleRate.WithLabelValues(ctx.Resource).Set(float64(rate))
			}
		case observability.OperationRebuild:
			in.rebuilds.Inc()
		}

	case observability.ComponentReporter:
		if ctx.Operation != observability.OperationReport {
			return
		}
		result := resultOK
		if ctx.Error != nil {
			result = resultError
		}
		in.reports.WithLabelValues(ctx.Resource, result).Inc()
		in.reportDuration.WithLabelValues(ctx.Resource).Observe(ctx.Duration.Seconds())
		if ctx.Error == nil && ctx.Size > 0 {
			in.reportBytes.WithLabelValues(ctx.Resource).Add(float64(ctx.Size))
			in.eventSize.WithLabelValues(ctx.Resource).Observe(float64(ctx.Size))
		}

	case observability.ComponentTracing:
		if ctx.SubResource != "" && ctx.Error == nil {
			in.tracingEvents.WithLabelValues(ctx.Resource, ctx.SubResource).Inc()
		}
	}
}
