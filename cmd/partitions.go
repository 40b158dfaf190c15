package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"partition-manager/core/catalog"
	"partition-manager/core/config"
	"partition-manager/core/logger"
	"partition-manager/core/storage"
	"partition-manager/feature/partitions"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the partition and table commands
	dryRun     bool
	yesConfirm bool
	awsProfile string
	limitDays  int
)

// partitionsCmd is the parent command for all partition operations.
var partitionsCmd = &cobra.Command{
	Use:   "partitions",
	Short: "Reconcile catalog partitions against object storage",
	Long: `Reconcile the partitions registered in the catalog with the partition
directories actually present in object storage.`,
}

var createPartitionsCmd = &cobra.Command{
	Use:   "create <database> <table>",
	Short: "Create catalog partitions for data found in storage",
	Long: `Walk the table's storage location, find partition directories shaped like
2019/01/02/03/ or year=2019/month=01/day=02/hour=03/, and register the
ones the catalog is missing.

Examples:
  # Show what would be created
  partitions create events requests --dry-run

  # Register partitions no older than a week, without prompting
  partitions create events requests --limit-days 7 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runCreatePartitions,
}

var deleteAllPartitionsCmd = &cobra.Command{
	Use:   "delete-all <database> <table>",
	Short: "Remove every partition from a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeletePartitions(args, partitions.DeleteAll)
	},
}

var deleteBadPartitionsCmd = &cobra.Command{
	Use:   "delete-bad <database> <table>",
	Short: "Remove partitions whose location is wrong or holds no data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeletePartitions(args, partitions.DeleteBad)
	},
}

var deleteMissingPartitionsCmd = &cobra.Command{
	Use:   "delete-missing <database> <table>",
	Short: "Remove partitions whose location holds no data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeletePartitions(args, partitions.DeleteMissing)
	},
}

var updatePartitionsCmd = &cobra.Command{
	Use:   "update <database> <table>",
	Short: "Point catalog partitions at data that moved in storage",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdatePartitions,
}

func init() {
	partitionsCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show the planned actions without performing them")
	partitionsCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	partitionsCmd.PersistentFlags().StringVarP(&awsProfile, "profile", "p", "", "AWS profile to use for the catalog")
	createPartitionsCmd.Flags().IntVarP(&limitDays, "limit-days", "l", 0, "Only create partitions at most this many days old (0 = no limit)")

	partitionsCmd.AddCommand(createPartitionsCmd)
	partitionsCmd.AddCommand(deleteAllPartitionsCmd)
	partitionsCmd.AddCommand(deleteBadPartitionsCmd)
	partitionsCmd.AddCommand(deleteMissingPartitionsCmd)
	partitionsCmd.AddCommand(updatePartitionsCmd)
	RootCmd.AddCommand(partitionsCmd)
}

func runCreatePartitions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	r, l, err := newReconciler(ctx)
	if err != nil {
		return err
	}

	opts := partitions.Options{DryRun: dryRun, LimitDays: limitDays}
	plan, err := r.PlanCreate(ctx, args[0], args[1], opts)
	if err != nil {
		return describeCatalogError(err, args[0]+"."+args[1])
	}

	printPlan(l, plan)
	return applyPlan(ctx, r, l, plan, opts)
}

func runDeletePartitions(args []string, mode partitions.DeleteMode) error {
	ctx := context.Background()

	r, l, err := newReconciler(ctx)
	if err != nil {
		return err
	}

	plan, err := r.PlanDelete(ctx, args[0], args[1], mode)
	if err != nil {
		return describeCatalogError(err, args[0]+"."+args[1])
	}

	printPlan(l, plan)
	return applyPlan(ctx, r, l, plan, partitions.Options{DryRun: dryRun})
}

func runUpdatePartitions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	r, l, err := newReconciler(ctx)
	if err != nil {
		return err
	}

	plan, err := r.PlanUpdate(ctx, args[0], args[1])
	if err != nil {
		return describeCatalogError(err, args[0]+"."+args[1])
	}

	printPlan(l, plan)
	return applyPlan(ctx, r, l, plan, partitions.Options{DryRun: dryRun})
}

// newReconciler wires a reconciler to the configured catalog and storage.
func newReconciler(ctx context.Context) (*partitions.Reconciler, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if awsProfile != "" {
		cfg.Catalog.Profile = awsProfile
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	cat, err := catalog.NewGlueClient(ctx, cfg.Catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	return partitions.NewReconciler(cat, storage.NewLister(store), l), l, nil
}

// printPlan prints a formatted plan report using logger.
func printPlan(l *zap.Logger, plan *partitions.Plan) {
	s := plan.Summary
	l.Info("Reconciliation plan",
		zap.String("database", plan.Database),
		zap.String("table", plan.Table),
		zap.Int("discovered", s.Discovered),
		zap.Int("in_catalog", s.InCatalog),
		zap.Int("creates", s.Creates),
		zap.Int("updates", s.Updates),
		zap.Int("deletes", s.Deletes),
	)

	// Show sample of actions (max 5 for logger)
	maxShow := 5
	if len(plan.Actions) < maxShow {
		maxShow = len(plan.Actions)
	}
	for i := 0; i < maxShow; i++ {
		action := plan.Actions[i]
		fields := []zap.Field{
			zap.String("type", string(action.Type)),
			zap.String("values", strings.Join(action.Values, "/")),
			zap.String("location", action.Location),
		}
		if action.NewLocation != "" {
			fields = append(fields, zap.String("new_location", action.NewLocation))
		}
		if action.Reason != "" {
			fields = append(fields, zap.String("reason", string(action.Reason)))
		}
		l.Info("Planned action", fields...)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// applyPlan executes a plan after the dry-run and confirmation gates.
func applyPlan(ctx context.Context, r *partitions.Reconciler, l *zap.Logger, plan *partitions.Plan, opts partitions.Options) error {
	if len(plan.Actions) == 0 {
		l.Info("Nothing to do")
		return nil
	}
	if opts.DryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	opts.Confirmed = true

	result, err := r.Apply(ctx, plan, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	l.Info("Successfully executed actions", zap.Int("count", result.Executed))
	if len(result.Failed) > 0 {
		for _, f := range result.Failed {
			l.Warn("Action rejected by catalog",
				zap.String("values", strings.Join(f.Action.Values, "/")),
				zap.String("code", f.Code),
				zap.String("message", f.Message),
			)
		}
		return fmt.Errorf("catalog rejected %d actions", len(result.Failed))
	}
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm catalog changes: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

// describeCatalogError appends the operator hint the raw catalog error lacks.
func describeCatalogError(err error, entity string) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("%w\n\tconfirm %s exists and you have the ability to access it", err, entity)
	case errors.Is(err, catalog.ErrAccessDenied):
		if awsProfile != "" {
			return fmt.Errorf("%w\n\tconfirm that profile %q has the required glue permissions", err, awsProfile)
		}
		return fmt.Errorf("%w\n\tdid you mean to run this with --profile specified?", err)
	}
	return err
}
