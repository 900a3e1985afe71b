package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swapflow",
	Short: "Cashflow and PnL accrual for interest rate swap positions",
	Long: `Swapflow folds the swap history of an interest rate swap position into
its net notional, average fixed rate, accrued cashflow and the cashflow
expected by maturity.

It provides tools for:
  - Computing position cashflow against a fixed APY, a recorded rate table
    or an on-chain rate oracle
  - Importing and listing swap history (CSV, SQLite, Postgres, subgraph)
  - Recording rate index observations
  - Journaling every computation run`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	cfgFile  string
	logLevel string
	jsonLogs bool

	log = zerolog.Nop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "swapflow.yaml", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = "info"
	}
	l, err := logger.Setup(level, jsonLogs)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log = l
	return nil
}

// loadConfig reads --config and applies the config's own log settings unless
// they were overridden on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	l, err := logger.Setup(level, jsonLogs || cfg.Log.JSON)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log = l
	return cfg, nil
}
