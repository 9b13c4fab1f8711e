package observe

import (
	"context"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Summary condenses a session's metrics for the exit log line
type Summary struct {
	Frames        int64
	Detected      int64
	InTune        int64
	CaptureErrors int64
	MeanDetect    time.Duration
	MaxDetect     time.Duration
}

// Summarize collects reader and folds the tuner metrics into a Summary
func Summarize(ctx context.Context, reader *sdkmetric.ManualReader) (Summary, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case FramesName:
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					continue
				}
				for _, dp := range sum.DataPoints {
					s.Frames += dp.Value
					if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == "detected" {
						s.Detected += dp.Value
					}
					if v, ok := dp.Attributes.Value("state"); ok && v.AsString() == "in_tune" {
						s.InTune += dp.Value
					}
				}
			case CaptureErrorsName:
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					continue
				}
				for _, dp := range sum.DataPoints {
					s.CaptureErrors += dp.Value
				}
			case DetectDuration:
				hist, ok := m.Data.(metricdata.Histogram[float64])
				if !ok {
					continue
				}
				var count uint64
				var total float64
				for _, dp := range hist.DataPoints {
					count += dp.Count
					total += dp.Sum
					if hi, ok := dp.Max.Value(); ok && seconds(hi) > s.MaxDetect {
						s.MaxDetect = seconds(hi)
					}
				}
				if count > 0 {
					s.MeanDetect = seconds(total / float64(count))
				}
			}
		}
	}
	return s, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
