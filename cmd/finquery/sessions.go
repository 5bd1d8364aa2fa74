package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/finquery/internal/app"
)

func newSessionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent query sessions",
		Long:  "List recent sessions from the session journal. Requires storage to be configured.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := app.NewApp(ctx, configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			if a.SessionStore == nil {
				return fmt.Errorf("session journal not configured (set storage address in config or FINQUERY_STORAGE_ADDRESS)")
			}

			sessions, err := a.SessionStore.ListSessions(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, s := range sessions {
				score := "n/a"
				if s.Verdict != nil {
					score = fmt.Sprintf("%.2f", s.Verdict.Score)
				}
				fmt.Fprintf(out, "%s  %s  score=%s  %q\n",
					s.CreatedAt.Format("2006-01-02 15:04"), s.ID, score, s.Query)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")

	return cmd
}
