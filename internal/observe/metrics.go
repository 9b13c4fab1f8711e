// Package observe records tuner metrics through the OpenTelemetry Metrics
// API. Tests and the binary back it with an sdk ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all tuner metrics
const meterName = "github.com/0xlemi/tunenote"

// Metric names
const (
	FramesName        = "tunenote.frames"
	DetectDuration    = "tunenote.detect.duration"
	CaptureErrorsName = "tunenote.capture.errors"
)

// Metrics holds the tuner's instruments. Safe for concurrent use.
type Metrics struct {
	// Frames counts analysed frames. Attributes:
	//   attribute.String("outcome", "detected"|<no-pitch reason>)
	//   attribute.String("state", <accuracy state>)
	Frames metric.Int64Counter

	// Detect tracks time spent in one detection call
	Detect metric.Float64Histogram

	// CaptureErrors counts failed frame reads
	CaptureErrors metric.Int64Counter
}

// latencyBuckets in seconds; a frame must finish within one polling tick
var latencyBuckets = []float64{
	0.001, 0.002, 0.005, 0.01, 0.016, 0.025, 0.05, 0.1,
}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter(FramesName,
		metric.WithDescription("Analysed audio frames by outcome and accuracy state."),
	); err != nil {
		return nil, err
	}
	if met.Detect, err = m.Float64Histogram(DetectDuration,
		metric.WithDescription("Latency of one pitch detection."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CaptureErrors, err = m.Int64Counter(CaptureErrorsName,
		metric.WithDescription("Failed frame reads from the capture device."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordFrame records one analysed frame
func (m *Metrics) RecordFrame(ctx context.Context, outcome, state string, took time.Duration) {
	if m == nil {
		return
	}
	m.Frames.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("state", state),
	))
	m.Detect.Record(ctx, took.Seconds())
}

// RecordCaptureError records a failed frame read
func (m *Metrics) RecordCaptureError(ctx context.Context) {
	if m == nil {
		return
	}
	m.CaptureErrors.Add(ctx, 1)
}
