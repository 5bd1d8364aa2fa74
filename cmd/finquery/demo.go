package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/finquery/internal/app"
	"github.com/bobmcallan/finquery/internal/common"
)

// demoQueries exercise each query type against synthetic data.
var demoQueries = []string{
	"Analyze AAPL's recent performance and suggest if I should hedge with options if volatility > 30%",
	"Compare TSLA and NVDA for allocation decision",
	"Is MSFT overbought based on RSI?",
}

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run example queries against synthetic data",
		Long: `Run a set of canned queries through the pipeline with the synthetic
data fallback enabled, so failed live fetches still produce data.
Reasoning needs a Gemini key to produce full responses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			os.Setenv("FINQUERY_USE_MOCK", "true")

			ctx := cmd.Context()
			a, err := app.NewApp(ctx, configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			common.PrintBanner(a.Config)

			for i, query := range demoQueries {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\nDEMO QUERY %d: %s\n%s\n",
					strings.Repeat("=", 70), i+1, query, strings.Repeat("=", 70))

				session, err := a.RunQuery(ctx, query, nil, nil)
				if err != nil {
					a.Logger.Error().Err(err).Str("query", query).Msg("Demo query failed")
					continue
				}
				printSession(cmd, session)
			}

			return nil
		},
	}
}
