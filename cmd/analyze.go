package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xlemi/tunenote/internal/audio"
	"github.com/0xlemi/tunenote/internal/tuner"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var frameSize, hop int
	cmd := &cobra.Command{
		Use:   "analyze FILE.wav",
		Short: "Print the detected note for each frame of a WAV recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cmd.ErrOrStderr())

			detector, classifier, err := newDetector(cfg)
			if err != nil {
				return err
			}
			engine := tuner.New(detector, classifier, tuner.WithLogger(logger))

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			samples, rate, err := audio.DecodeWAV(f)
			if err != nil {
				return err
			}
			if frameSize <= 0 {
				frameSize = cfg.Audio.FrameSize
			}
			if hop <= 0 {
				hop = frameSize / 2
			}
			logger.Debug("analyzing", "file", args[0], "samples", len(samples), "sample_rate", rate, "frame_size", frameSize)

			out := cmd.OutOrStdout()
			frames := audio.Frames(samples, rate, frameSize, hop)
			for i := range frames {
				u := engine.Process(cmd.Context(), &frames[i])
				at := float64(i*hop) / float64(rate)
				if u.Reading == nil {
					fmt.Fprintf(out, "%8.3fs  %-4s %9s  %s\n", at, "--", "", u.Reason)
					continue
				}
				fmt.Fprintf(out, "%8.3fs  %-4s %+4d cents  %-9s %8.2f Hz\n",
					at, u.Reading.Note, u.Reading.Cents,
					u.Assessment.State, u.Reading.SourceHz)
			}
			if len(frames) == 0 {
				fmt.Fprintf(out, "recording shorter than one frame (%d samples)\n", frameSize)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&frameSize, "frame", 0, "samples per frame (default from config)")
	cmd.Flags().IntVar(&hop, "hop", 0, "samples between frame starts (default half a frame)")
	return cmd
}
