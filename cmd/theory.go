package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xlemi/tunenote/internal/theory"
)

func newChordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chord ROOT TYPE",
		Short: "List the notes of a chord",
		Long:  "List the notes of a chord. Types: " + strings.Join(theory.ChordTypes(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := theory.Chord(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", args[0], args[1], strings.Join(notes, " - "))
			return nil
		},
	}
}

func newScaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scale ROOT TYPE",
		Short: "List the notes and step pattern of a scale",
		Long:  "List the notes and step pattern of a scale. Types: " + strings.Join(theory.ScaleTypes(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := theory.Scale(args[0], args[1])
			if err != nil {
				return err
			}
			steps, err := theory.Intervals(args[1])
			if err != nil {
				return err
			}
			pattern := make([]string, len(steps))
			for i, s := range steps {
				pattern[i] = fmt.Sprint(s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %s\n", args[0], args[1], strings.Join(notes, " - "))
			fmt.Fprintf(out, "steps: %s\n", strings.Join(pattern, " - "))
			return nil
		},
	}
}
