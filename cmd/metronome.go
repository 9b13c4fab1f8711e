package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xlemi/tunenote/internal/audio"
	"github.com/0xlemi/tunenote/internal/theory"
)

type clicker interface {
	Click() error
}

func newMetronomeCmd() *cobra.Command {
	var bpm, count, beats, sampleRate int
	cmd := &cobra.Command{
		Use:   "metronome",
		Short: "Click at a steady tempo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			player := audio.NewTonePlayer(sampleRate)
			defer player.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err := runMetronome(ctx, cmd.OutOrStdout(), player, bpm, beats, count)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&bpm, "bpm", 120, fmt.Sprintf("tempo in beats per minute (%d-%d)", theory.MinBPM, theory.MaxBPM))
	cmd.Flags().IntVar(&beats, "beats", 4, "beats per bar")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many beats (0 runs until interrupted)")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "output sample rate")
	return cmd
}

// runMetronome clicks every beat, printing the position in the bar
func runMetronome(ctx context.Context, out io.Writer, c clicker, bpm, beats, count int) error {
	interval, err := theory.BeatInterval(bpm)
	if err != nil {
		return err
	}
	if beats < 1 {
		beats = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Fprintf(out, "%d bpm\n", bpm)
	for n := 0; count == 0 || n < count; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := c.Click(); err != nil {
			return fmt.Errorf("click: %w", err)
		}
		fmt.Fprintf(out, "beat %d/%d\n", n%beats+1, beats)
	}
	return nil
}

func newTapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tap",
		Short: "Measure a tempo by pressing Enter on each beat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTap(cmd.InOrStdin(), cmd.OutOrStdout(), time.Now)
		},
	}
}

func runTap(in io.Reader, out io.Writer, now func() time.Time) error {
	fmt.Fprintln(out, "Press Enter on each beat, Ctrl+D to finish")
	var tapper theory.Tapper
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		bpm, ok := tapper.Tap(now())
		switch {
		case ok:
			fmt.Fprintf(out, "%d bpm\n", bpm)
		case bpm != 0:
			fmt.Fprintf(out, "%d bpm is outside %d-%d, keep tapping\n", bpm, theory.MinTapBPM, theory.MaxTapBPM)
		default:
			fmt.Fprintln(out, "tap")
		}
	}
	return sc.Err()
}

func newCircleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "circle [KEY]",
		Short: "Show the circle of fifths or the signature of a major key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for i, k := range theory.CircleOfFifths() {
					ks, err := theory.LookupKey(k)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%2d  %-3s %-4s %s\n", i, k, ks.RelativeMinor, accidentals(ks))
				}
				return nil
			}

			ks, err := theory.LookupKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s major\n", ks.Key)
			fmt.Fprintf(out, "relative minor: %s\n", ks.RelativeMinor)
			fmt.Fprintf(out, "sharps: %d\nflats: %d\n", ks.Sharps, ks.Flats)
			if down, up, err := theory.Neighbours(args[0]); err == nil {
				fmt.Fprintf(out, "neighbours: %s (IV) and %s (V)\n", down, up)
			}
			return nil
		},
	}
}

func accidentals(ks theory.KeySignature) string {
	switch {
	case ks.Sharps > 0:
		return fmt.Sprintf("%d#", ks.Sharps)
	case ks.Flats > 0:
		return fmt.Sprintf("%db", ks.Flats)
	default:
		return "-"
	}
}
