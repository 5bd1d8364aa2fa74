package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/finquery/internal/app"
	"github.com/bobmcallan/finquery/internal/charts"
	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/models"
)

func newAskCommand() *cobra.Command {
	var (
		portfolioFlag string
		targetFlag    string
		chartPath     string
		mock          bool
	)

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a financial question",
		Long: `Run a natural-language query through the full pipeline and print the
validated recommendation.

Portfolio context is optional:
  finquery ask "Should I rebalance?" --portfolio AAPL=10,GOOGL=5 --target AAPL=60,GOOGL=40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mock {
				os.Setenv("FINQUERY_USE_MOCK", "true")
			}

			holdings, err := parseSymbolValues(portfolioFlag)
			if err != nil {
				return fmt.Errorf("invalid --portfolio: %w", err)
			}
			targets, err := parseSymbolValues(targetFlag)
			if err != nil {
				return fmt.Errorf("invalid --target: %w", err)
			}

			ctx := cmd.Context()
			a, err := app.NewApp(ctx, configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			common.PrintBanner(a.Config)

			session, err := a.RunQuery(ctx, args[0], holdings, targets)
			if err != nil {
				return err
			}

			printSession(cmd, session)

			if chartPath != "" {
				if err := writeChart(session, chartPath); err != nil {
					a.Logger.Warn().Err(err).Msg("Chart rendering failed")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "\nChart written to %s\n", chartPath)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&portfolioFlag, "portfolio", "", "Holdings as SYMBOL=SHARES pairs, comma separated")
	cmd.Flags().StringVar(&targetFlag, "target", "", "Target allocation as SYMBOL=PERCENT pairs, comma separated")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a price chart PNG for the last analyzed symbol")
	cmd.Flags().BoolVar(&mock, "mock", false, "Fall back to synthetic market data when live fetches fail")

	return cmd
}

// parseSymbolValues parses "AAPL=10,GOOGL=5" into a symbol map.
func parseSymbolValues(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}

	result := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected SYMBOL=VALUE, got %q", pair)
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad value in %q: %w", pair, err)
		}
		result[strings.ToUpper(strings.TrimSpace(parts[0]))] = value
	}
	return result, nil
}

// printSession writes the final response and run metadata to stdout.
func printSession(cmd *cobra.Command, session *models.Session) {
	out := cmd.OutOrStdout()
	hr := strings.Repeat("=", 70)

	fmt.Fprintf(out, "\n%s\nFINAL RESPONSE\n%s\n", hr, hr)
	if session.FinalResponse != "" {
		fmt.Fprintln(out, session.FinalResponse)
	} else {
		fmt.Fprintln(out, "No response generated")
	}

	fmt.Fprintf(out, "\n%s\nANALYSIS METADATA\n%s\n", hr, hr)
	if len(session.Symbols) > 0 {
		fmt.Fprintf(out, "Symbols analyzed: %s\n", strings.Join(session.Symbols, ", "))
	} else {
		fmt.Fprintln(out, "Symbols analyzed: None")
	}
	fmt.Fprintf(out, "Tool calls: %d\n", len(session.ToolCalls))
	if session.Verdict != nil {
		fmt.Fprintf(out, "Guardrail score: %.2f/1.0\n", session.Verdict.Score)
	} else {
		fmt.Fprintln(out, "Guardrail score: N/A")
	}
	fmt.Fprintf(out, "Conversation turns: %d\n", len(session.Messages))
}

// writeChart renders the last analyzed snapshot to a PNG file.
func writeChart(session *models.Session, path string) error {
	if session.LatestSnapshot == nil {
		return fmt.Errorf("no snapshot available to chart")
	}
	png, err := charts.RenderPriceChart(session.LatestSnapshot)
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0644)
}
