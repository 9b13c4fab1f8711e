// Package tuner runs the detection pipeline: frame, pitch estimate, nearest
// note, accuracy state.
package tuner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/0xlemi/tunenote/internal/audio"
	"github.com/0xlemi/tunenote/internal/observe"
	"github.com/0xlemi/tunenote/internal/pitch"
	"github.com/0xlemi/tunenote/internal/theory"
)

// Update is the result of one polling tick
type Update struct {
	Reading    *pitch.Reading // nil when no pitch was detected
	Assessment pitch.Assessment
	String     *theory.GuitarString // nearest open string, nil without a reading
	Reason     pitch.Reason
	Err        error // capture failure; Assessment.State is StateError
}

// Engine ties a detector and classifier together. It holds no state between
// frames.
type Engine struct {
	detector   pitch.Detector
	classifier *pitch.Classifier
	metrics    *observe.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics records per-frame metrics
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine's logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine
func New(d pitch.Detector, c *pitch.Classifier, opts ...Option) *Engine {
	e := &Engine{
		detector:   d,
		classifier: c,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Process analyzes one frame synchronously
func (e *Engine) Process(ctx context.Context, frame *audio.Frame) Update {
	start := e.now()
	var est pitch.Estimate
	if frame != nil {
		est = e.detector.Detect(frame.Samples, float64(frame.SampleRate))
	} else {
		est = pitch.NoPitch(pitch.ReasonEmpty)
	}

	var u Update
	if est.Detected {
		r := pitch.NewReading(est.Frequency)
		s := theory.NearestString(est.Frequency)
		u.Reading = &r
		u.String = &s
		u.Assessment = e.classifier.Classify(&r.Cents)
	} else {
		u.Reason = est.Reason
		u.Assessment = e.classifier.Classify(nil)
	}

	outcome := "detected"
	if !est.Detected {
		outcome = est.Reason.String()
	}
	e.metrics.RecordFrame(ctx, outcome, u.Assessment.State.String(), e.now().Sub(start))

	if u.Reading != nil {
		e.logger.Debug("pitch detected",
			"hz", u.Reading.SourceHz,
			"note", u.Reading.Note.String(),
			"cents", u.Reading.Cents,
			"state", u.Assessment.State.String(),
		)
	}
	return u
}

// Run polls src every interval and hands each update to sink until ctx is
// cancelled. Ticks are skipped while src is stopped. Capture failures are
// reported as StateError updates and polling continues.
func (e *Engine) Run(ctx context.Context, src audio.Capturer, interval time.Duration, sink func(Update)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if !src.IsCapturing() {
			lastErr = nil
			continue
		}

		frame, err := src.GetBuffer()
		if err != nil {
			if errors.Is(err, audio.ErrNotCapturing) {
				continue
			}
			e.metrics.RecordCaptureError(ctx)
			// Report each distinct failure once
			if lastErr == nil || lastErr.Error() != err.Error() {
				e.logger.Warn("capture failed", "err", err)
				sink(Update{Err: err, Assessment: pitch.Assessment{State: pitch.StateError, Label: err.Error()}})
			}
			lastErr = err
			continue
		}
		lastErr = nil

		if len(frame.Samples) == 0 {
			// Device open but no callback yet
			continue
		}
		sink(e.Process(ctx, frame))
	}
}
