package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/0xlemi/tunenote/internal/audio"
	"github.com/0xlemi/tunenote/internal/config"
	"github.com/0xlemi/tunenote/internal/observe"
	"github.com/0xlemi/tunenote/internal/theory"
	"github.com/0xlemi/tunenote/internal/tuner"
	"github.com/0xlemi/tunenote/internal/ui"
)

const referenceToneDuration = time.Second

// deviceControls lets the display start and stop capture and play
// reference tones
type deviceControls struct {
	capturer audio.Capturer
	player   *audio.TonePlayer
}

func (d *deviceControls) Start() error { return d.capturer.Start() }
func (d *deviceControls) Stop() error  { return d.capturer.Stop() }

func (d *deviceControls) PlayString(n int) error {
	s, ok := theory.StringByNumber(n)
	if !ok {
		return fmt.Errorf("no string %d", n)
	}
	return d.player.Play(s.Frequency, referenceToneDuration)
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		// The TUI owns the terminal
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newCapturer(cfg *config.Config, demoHz float64) (audio.Capturer, error) {
	if demoHz > 0 {
		return audio.NewToneCapturer(demoHz, cfg.Audio.FrameSize, cfg.Audio.SampleRate), nil
	}
	c, err := audio.NewPortAudioCapturer(cfg.Audio.FrameSize, cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return nil, fmt.Errorf("initialise audio: %w", err)
	}
	c.SetAmplification(float32(cfg.Audio.Amplification))
	return c, nil
}

func runTuner(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	w, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := newLogger(cfg.LogLevel, w)
	slog.SetDefault(logger)

	// Metrics stay in-process and are summarised on exit
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	detector, classifier, err := newDetector(cfg)
	if err != nil {
		return err
	}
	engine := tuner.New(detector, classifier, tuner.WithMetrics(metrics), tuner.WithLogger(logger))

	capturer, err := newCapturer(cfg, opts.demoHz)
	if err != nil {
		return err
	}
	defer func() {
		if capturer.IsCapturing() {
			capturer.Stop()
		}
		if c, ok := capturer.(io.Closer); ok {
			c.Close()
		}
	}()

	player := audio.NewTonePlayer(cfg.Audio.SampleRate)
	defer player.Close()

	slog.Info("tunenote starting",
		"profile", cfg.Profile,
		"instrument", cfg.Instrument,
		"sample_rate", cfg.Audio.SampleRate,
		"frame_size", cfg.Audio.FrameSize,
		"poll_interval", cfg.Audio.PollInterval,
		"demo_hz", opts.demoHz,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(&deviceControls{capturer: capturer, player: player}, cfg.Display.NeedleMaxDegrees)
	p := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := engine.Run(gctx, capturer, cfg.Audio.PollInterval, func(u tuner.Update) {
			p.Send(ui.UpdateMsg(u))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		// Leaving the UI ends the session
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	err = g.Wait()

	// The UI has released the terminal, so without a log file the summary
	// goes to stderr
	out := logger
	if cfg.LogFile == "" {
		out = newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	}
	logSummary(out, reader)
	return err
}

func logSummary(logger *slog.Logger, reader *sdkmetric.ManualReader) {
	s, err := observe.Summarize(context.Background(), reader)
	if err != nil {
		logger.Warn("collect metrics", "err", err)
		return
	}
	logger.Info("session summary",
		"frames", s.Frames,
		"detected", s.Detected,
		"in_tune", s.InTune,
		"capture_errors", s.CaptureErrors,
		"mean_detect", s.MeanDetect,
		"max_detect", s.MaxDetect,
	)
}
