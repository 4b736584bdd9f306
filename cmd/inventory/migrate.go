package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"inventory-system/core/appbootstrap"
	"inventory-system/core/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema in line and print what changed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		report, err := appbootstrap.Migrate(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the database schema",
}

var schemaPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how the database differs from the compiled-in schema without changing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		plan, err := appbootstrap.PlanSchema(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), plan.Describe())
		return nil
	},
}

var schemaBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List the snapshots taken before schema rewrites",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		items, err := appbootstrap.ListBackups(cfg)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(w, "no backups")
			return nil
		}
		for _, it := range items {
			fmt.Fprintf(w, "%-40s %10d  %s\n", it.Name, it.SizeBytes, it.Path)
		}
		return nil
	},
}

func printReport(w io.Writer, report *store.SyncReport) {
	for _, name := range report.DroppedLegacy {
		fmt.Fprintf(w, "%-32s dropped (legacy)\n", name)
	}
	for _, o := range report.Tables {
		line := fmt.Sprintf("%-32s %s", o.Table, o.Kind)
		if o.Kind == store.OutcomeRebuilt {
			line += fmt.Sprintf(" added=[%s] dropped=[%s] copied=%d skipped=%d",
				strings.Join(o.Added, ","), strings.Join(o.Dropped, ","), o.RowsCopied, o.RowsSkipped)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "indexes ensured=%d failed=%d\n", report.IndexesEnsured, len(report.IndexFailures))
	if report.ForeignKeyViolations > 0 {
		fmt.Fprintf(w, "foreign key violations=%d\n", report.ForeignKeyViolations)
	}
}

func init() {
	schemaCmd.AddCommand(schemaPlanCmd, schemaBackupsCmd)
	rootCmd.AddCommand(migrateCmd, schemaCmd)
}
