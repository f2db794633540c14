package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "A bar-replay backtesting engine for trading strategies",
	Long: `Replay runs historical price bars through a pluggable trading strategy
against a simulated cash/position ledger and reports performance statistics.

It provides tools for:
  - Backtesting strategies over CSV bar datasets (plain or xz-compressed)
  - Journaling trades, equity curves and run summaries to CSV or SQLite
  - Streaming run events to websocket dashboard clients
  - Fetching bar data from a remote market-data provider`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
