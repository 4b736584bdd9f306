package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"inventory-system/core/appbootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Synchronize the schema, then serve the local API and run the expiry watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := appbootstrap.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("startup aborted: %v", err)
		return err
	}
	defer app.Close()
	logger.Printf("%s %s ready", cfg.AppName, cfg.AppVersion)
	return app.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
