package cmd

import (
	"context"
	"fmt"

	"partition-manager/core/catalog"
	"partition-manager/core/config"
	"partition-manager/core/logger"
	"partition-manager/feature/tables"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// tablesCmd is the parent command for catalog table cleanup.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Clean up catalog tables",
}

var deleteBadTablesCmd = &cobra.Command{
	Use:   "delete-bad <database>",
	Short: "Remove tables erroneously created inside other tables",
	Long: `Find tables whose location sits inside another table's location, or that
duplicate another table's location under a generated name, and remove them
from the catalog. A crawler pass over a bucket that already holds
registered tables is the usual source of both.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteBadTables,
}

func init() {
	tablesCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show the planned actions without performing them")
	tablesCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	tablesCmd.PersistentFlags().StringVarP(&awsProfile, "profile", "p", "", "AWS profile to use for the catalog")

	tablesCmd.AddCommand(deleteBadTablesCmd)
	RootCmd.AddCommand(tablesCmd)
}

func runDeleteBadTables(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if awsProfile != "" {
		cfg.Catalog.Profile = awsProfile
	}

	cat, err := catalog.NewGlueClient(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	cleaner := tables.NewCleaner(cat, l)
	report, err := cleaner.PlanDelete(ctx, args[0])
	if err != nil {
		return describeCatalogError(err, args[0])
	}

	for _, pair := range report.Ambiguous {
		l.Warn("Tables share a name and location; resolve manually",
			zap.String("name", pair[0].Name),
			zap.String("location", pair[0].Location))
	}

	if len(report.Findings) == 0 {
		l.Info("Nothing to delete", zap.Int("scanned", report.Scanned))
		return nil
	}

	l.Info("Going to delete the following tables", zap.Int("count", len(report.Findings)))
	for _, f := range report.Findings {
		l.Info("Planned table delete",
			zap.String("table", f.Table.Name),
			zap.String("location", f.Table.Location),
			zap.String("conflicts_with", f.ConflictsWith.Name),
			zap.String("reason", string(f.Reason)),
		)
	}

	if dryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := cleaner.Apply(ctx, report, tables.Options{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	l.Info("Successfully deleted tables", zap.Int("count", result.Executed))
	if len(result.Failed) > 0 {
		for _, f := range result.Failed {
			l.Warn("Table rejected by catalog",
				zap.String("table", f.Name),
				zap.String("code", f.Code),
				zap.String("message", f.Message),
			)
		}
		return fmt.Errorf("catalog rejected %d tables", len(result.Failed))
	}
	return nil
}
