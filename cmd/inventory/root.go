package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inventory-system/config"
	"inventory-system/core/utils"
)

var (
	cfgFile  string
	dataDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Local inventory of ingredients, products and groups",
	Long: `inventory keeps ingredients, the products mixed from them and product
groups in a single SQLite file. On every start the database schema is
brought in line with the schema compiled into the binary.

Running without a subcommand starts the local API (same as "serve").`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment INVENTORY_* is used when empty")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the database file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadRuntime reads the configuration, applies flag overrides and builds
// the logger.
func loadRuntime(cmd *cobra.Command) (*config.AppConfig, *utils.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	logger := utils.NewLoggerWithLevel(cmd.ErrOrStderr(), cfg.LogLevel)
	return cfg, logger, nil
}
