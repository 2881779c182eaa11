package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradebot",
	Short: "An autonomous trading bot with paper and live exchange backends",
	Long: `Tradebot manages trading positions and order flow against one of
several interchangeable exchange backends.

It provides:
  - A paper trading simulator with an in-memory position ledger
  - A live Delta Exchange backend over signed REST
  - Risk limits, weighted-average position accounting and PnL tracking
  - Trailing stop-loss monitoring
  - Fill and equity journaling to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
