package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var metricsFile string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "encoderkit",
		Short:         "Locate, install, and inspect the ffmpeg encoder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(metricsFile)
			if path == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file after the command runs")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))
	rootCmd.AddCommand(newFeaturesCommand(ctx))
	rootCmd.AddCommand(newBuildInfoCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newFragmentCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
