package tuner

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/0xlemi/tunenote/internal/audio"
	"github.com/0xlemi/tunenote/internal/observe"
	"github.com/0xlemi/tunenote/internal/pitch"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newEngine(t *testing.T) (*Engine, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}
	e := New(
		pitch.NewAutocorrDetector(pitch.DefaultConfig()),
		pitch.NewClassifier(pitch.DefaultClassifierConfig()),
		WithMetrics(m),
	)
	return e, reader
}

func sineFrame(freq float64, rate, n int) *audio.Frame {
	f := &audio.Frame{Samples: make([]float32, n), SampleRate: rate}
	for i := range f.Samples {
		f.Samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return f
}

func TestProcessTone(t *testing.T) {
	e, reader := newEngine(t)
	u := e.Process(context.Background(), sineFrame(146.83, 44100, 4096))
	if u.Reading == nil {
		t.Fatalf("no reading, reason %v", u.Reason)
	}
	if u.Reading.Note.String() != "D3" {
		t.Errorf("note = %s, want D3", u.Reading.Note)
	}
	if u.String == nil || u.String.Number != 4 {
		t.Errorf("string = %v, want 4", u.String)
	}
	switch u.Assessment.State {
	case pitch.StateInTune, pitch.StateFlat, pitch.StateSharp:
	default:
		t.Errorf("state = %v", u.Assessment.State)
	}

	s, err := observe.Summarize(context.Background(), reader)
	if err != nil {
		t.Fatal(err)
	}
	if s.Frames != 1 || s.Detected != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestProcessSilence(t *testing.T) {
	e, _ := newEngine(t)
	u := e.Process(context.Background(), &audio.Frame{Samples: make([]float32, 4096), SampleRate: 44100})
	if u.Reading != nil || u.String != nil {
		t.Fatalf("reading in silence: %+v", u.Reading)
	}
	if u.Assessment.State != pitch.StateNoSignal || u.Assessment.NeedleDegrees != 0 {
		t.Errorf("assessment = %+v", u.Assessment)
	}
	if u.Reason != pitch.ReasonQuiet {
		t.Errorf("reason = %v", u.Reason)
	}
}

func TestProcessNilFrame(t *testing.T) {
	e, _ := newEngine(t)
	u := e.Process(context.Background(), nil)
	if u.Reading != nil || u.Reason != pitch.ReasonEmpty {
		t.Errorf("update = %+v", u)
	}
}

// collector gathers updates from Run
type collector struct {
	mu      sync.Mutex
	updates []Update
}

func (c *collector) add(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u)
}

func (c *collector) snapshot() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Update(nil), c.updates...)
}

func TestRunPollsCapturer(t *testing.T) {
	e, _ := newEngine(t)
	src := audio.NewToneCapturer(110, 4096, 44100)
	if err := src.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var c collector
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, src, time.Millisecond, c.add) }()

	deadline := time.Now().Add(5 * time.Second)
	for len(c.snapshot()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}

	updates := c.snapshot()
	if len(updates) < 3 {
		t.Fatalf("got %d updates", len(updates))
	}
	for i, u := range updates {
		if u.Reading == nil {
			t.Errorf("update %d: no reading (%v)", i, u.Reason)
			continue
		}
		if u.Reading.Note.Name != "A" || u.Reading.Note.Octave != 2 {
			t.Errorf("update %d: note %s", i, u.Reading.Note)
		}
	}
}

func TestRunSkipsStoppedCapturer(t *testing.T) {
	e, _ := newEngine(t)
	src := audio.NewToneCapturer(110, 1024, 44100)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	var c collector
	if err := e.Run(ctx, src, time.Millisecond, c.add); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v", err)
	}
	if n := len(c.snapshot()); n != 0 {
		t.Errorf("got %d updates from a stopped capturer", n)
	}
}

// failingCapturer always fails to read
type failingCapturer struct{}

func (failingCapturer) Start() error      { return nil }
func (failingCapturer) Stop() error       { return nil }
func (failingCapturer) IsCapturing() bool { return true }
func (failingCapturer) GetBuffer() (*audio.Frame, error) {
	return nil, errors.New("device unplugged")
}

func TestRunReportsCaptureErrorOnce(t *testing.T) {
	e, reader := newEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	var c collector
	_ = e.Run(ctx, failingCapturer{}, time.Millisecond, c.add)

	updates := c.snapshot()
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	if updates[0].Assessment.State != pitch.StateError || updates[0].Err == nil {
		t.Errorf("update = %+v", updates[0])
	}

	s, err := observe.Summarize(context.Background(), reader)
	if err != nil {
		t.Fatal(err)
	}
	if s.CaptureErrors < 1 {
		t.Errorf("capture errors = %d", s.CaptureErrors)
	}
}
