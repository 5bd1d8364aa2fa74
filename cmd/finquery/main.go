package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/finquery/internal/common"
)

var configPath string

func main() {
	// Load .env before config resolution so env overrides apply
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "finquery",
		Short: "Natural-language financial query agent",
		Long: `FinQuery answers natural-language questions about stocks and portfolios.

Queries run through a five-stage pipeline: symbols are parsed from the
question, market data is fetched and cached, technical indicators are
computed, a model reasons over the data, and the response is validated
against guardrails before it reaches you.`,
		Version: common.GetFullVersion(),
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: finquery.toml next to binary)")

	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newSessionsCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), common.GetFullVersion())
		},
	}
}
