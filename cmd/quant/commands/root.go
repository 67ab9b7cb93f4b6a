package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-intraday/pkg/config"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Intraday equity scanner for NSE/BSE",
	Long: `Intraday equity scanner

Validates a ticker universe, fetches one-minute bars for the current
trading session and ranks tickers by risk-adjusted return.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant scan
  go run ./cmd/quant scan --exchange NSE --top 5
  go run ./cmd/quant universe --exchange BSE
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads configuration and builds the logger, honouring --verbose
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
