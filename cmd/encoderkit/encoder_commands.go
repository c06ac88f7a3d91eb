package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"encoderkit/internal/capability"
	"encoderkit/internal/session"
)

type resolveOutput struct {
	Path          string `json:"path"`
	Source        string `json:"source"`
	DownloadError string `json:"download_error,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the encoder path, downloading it if nothing is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session.Session) error {
				loc := s.Resolve(cmd.Context())
				out := resolveOutput{Path: loc.Path, Source: string(loc.Source)}
				if loc.DownloadErr != nil {
					out.DownloadError = loc.DownloadErr.Error()
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), loc.Path)
				if out.DownloadError != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", out.DownloadError)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Install the encoder into the managed cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session.Session) error {
				if err := s.Download(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Encoder installed at %s\n", s.ManagedPath())
				return nil
			})
		},
	}
}

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the encoder version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session.Session) error {
				v, ok := s.Version(cmd.Context())
				if !ok {
					return errors.New("encoder version unavailable; run `encoderkit buildinfo` to inspect the raw output")
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
				return nil
			})
		},
	}
}

func newBuildInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "buildinfo",
		Short: "Print the encoder build configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session.Session) error {
				text, err := s.BuildInfo(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				if !strings.HasSuffix(text, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
}

type featureOutput struct {
	Feature string `json:"feature"`
	Present bool   `json:"present"`
}

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "features [feature...]",
		Short: "Report compiled-in encoder features",
		Long: "Report whether the encoder was built with each feature. Detection looks for the\n" +
			"configure switch in the build configuration and may miss libraries enabled another way.",
		RunE: func(cmd *cobra.Command, args []string) error {
			features := capability.Features()
			if len(args) > 0 {
				features = nil
				for _, arg := range args {
					f, ok := capability.ParseFeature(arg)
					if !ok {
						return fmt.Errorf("unknown feature %q", arg)
					}
					features = append(features, f)
				}
			}
			return ctx.withSession(func(s *session.Session) error {
				results := make([]featureOutput, 0, len(features))
				for _, f := range features {
					results = append(results, featureOutput{Feature: string(f), Present: s.HasFeature(cmd.Context(), f)})
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{r.Feature, yesNo(r.Present)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Feature", "Present"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
