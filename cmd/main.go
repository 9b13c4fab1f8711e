package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xlemi/tunenote/internal/config"
	"github.com/0xlemi/tunenote/internal/pitch"
)

// options are the flags shared by every command
type options struct {
	configPath string
	profile    string
	instrument string
	method     string
	logLevel   string
	logFile    string
	demoHz     float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "tunenote",
		Short:        "Chromatic tuner for guitar and other instruments",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTuner(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	flags.StringVar(&opts.profile, "profile", "", "device class: desktop or mobile")
	flags.StringVarP(&opts.instrument, "instrument", "i", "", "instrument range: guitar, bass, ukulele or chromatic")
	flags.StringVar(&opts.method, "method", "", "autocorrelation method: auto, direct or fft")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file while the tuner is running")
	cmd.Flags().Float64Var(&opts.demoHz, "demo", 0, "use a synthetic tone at this frequency instead of the microphone")

	cmd.AddCommand(newAnalyzeCmd(opts), newChordCmd(), newScaleCmd(), newCircleCmd(), newMetronomeCmd(), newTapCmd())
	return cmd
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides on top
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	if opts.profile != "" {
		cfg.ApplyProfile(opts.profile)
	}
	if opts.instrument != "" {
		cfg.Instrument = opts.instrument
	}
	if opts.method != "" {
		cfg.Detector.Method = opts.method
	}
	if opts.logLevel != "" {
		cfg.LogLevel = config.LogLevel(opts.logLevel)
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level config.LogLevel, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func newDetector(cfg *config.Config) (*pitch.AutocorrDetector, *pitch.Classifier, error) {
	pc, err := cfg.Pitch()
	if err != nil {
		return nil, nil, fmt.Errorf("detector: %w", err)
	}
	return pitch.NewAutocorrDetector(pc), pitch.NewClassifier(cfg.Classifier()), nil
}
