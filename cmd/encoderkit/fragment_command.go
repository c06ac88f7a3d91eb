package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"encoderkit/internal/fragment"
)

func newFragmentCommand() *cobra.Command {
	var from, duration, fps float64
	cmd := &cobra.Command{
		Use:         "fragment <url>",
		Short:       "Append a #t= media fragment for a frame window",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return errors.New("--fps must be positive")
			}
			if !cmd.Flags().Changed("duration") {
				duration = math.Inf(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), fragment.Address(fragment.Window{
				SourceURL: args[0],
				StartFrom: from,
				Duration:  duration,
				FPS:       fps,
			}))
			return nil
		},
	}
	cmd.Flags().Float64Var(&from, "from", 0, "Start offset in frames (negative trims the start of the source)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Window length in frames (omit for an open-ended range)")
	cmd.Flags().Float64Var(&fps, "fps", 30, "Frames per second")
	return cmd
}
