package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"encoderkit/internal/manifest"
	"encoderkit/internal/session"
)

type attemptOutput struct {
	Outcome    string    `json:"outcome"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	SHA256     string    `json:"sha256,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	Verified   bool      `json:"verified"`
	FinishedAt time.Time `json:"finished_at"`
}

type statusOutput struct {
	Encoder     string          `json:"encoder,omitempty"`
	Installed   bool            `json:"installed"`
	ManagedPath string          `json:"managed_path"`
	Manifest    string          `json:"manifest"`
	LastInstall *attemptOutput  `json:"last_install,omitempty"`
	Attempts    []attemptOutput `json:"attempts"`
}

func toAttemptOutput(a manifest.Attempt) attemptOutput {
	return attemptOutput{
		Outcome:    string(a.Outcome),
		Stage:      a.Stage,
		Error:      a.ErrorMessage,
		SourceURL:  a.SourceURL,
		SHA256:     a.SHA256,
		SizeBytes:  a.SizeBytes,
		Verified:   a.Verified,
		FinishedAt: a.FinishedAt,
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the installed encoder and recent download attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session.Session) error {
				path, found := s.FindExisting(cmd.Context())
				installed, err := s.LastInstall(cmd.Context())
				if err != nil {
					return err
				}
				attempts, err := s.History(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if asJSON {
					out := statusOutput{
						Encoder:     path,
						Installed:   found,
						ManagedPath: s.ManagedPath(),
						Manifest:    s.ManifestPath(),
						Attempts:    make([]attemptOutput, 0, len(attempts)),
					}
					if installed != nil {
						last := toAttemptOutput(*installed)
						out.LastInstall = &last
					}
					for _, a := range attempts {
						out.Attempts = append(out.Attempts, toAttemptOutput(a))
					}
					return writeJSON(cmd.OutOrStdout(), out)
				}

				w := cmd.OutOrStdout()
				colorize := shouldColorize(w)
				var newest *manifest.Attempt
				if len(attempts) > 0 {
					newest = &attempts[0]
				}
				config := "defaults (no config file)"
				if ctx.configSeen {
					config = ctx.configPath
				}

				fmt.Fprintln(w, sectionTitle("encoder", colorize))
				for _, line := range []statusLine{
					encoderLine(path, found),
					installLine(installed),
					attemptLine(newest, s.RetryCooldown(), time.Now()),
					{label: "managed path", text: s.ManagedPath()},
					{label: "manifest", text: s.ManifestPath()},
					{label: "config", text: config},
				} {
					fmt.Fprintln(w, line.render(colorize))
				}
				if len(attempts) == 0 {
					return nil
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, sectionTitle("download history", colorize))
				fmt.Fprintln(w, renderAttempts(attempts))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of attempts to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderAttempts(attempts []manifest.Attempt) string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.SourceURL
		if !a.Succeeded() {
			detail = a.Stage + ": " + a.ErrorMessage
		}
		rows = append(rows, []string{
			stamp(a.FinishedAt),
			string(a.Outcome),
			strconv.FormatInt(a.SizeBytes, 10),
			yesNo(a.Verified),
			detail,
		})
	}
	return renderTable(
		[]string{"Finished", "Outcome", "Bytes", "Verified", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
