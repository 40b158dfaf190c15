package tables

import (
	"context"
	"fmt"

	"partition-manager/core/catalog"

	"go.uber.org/zap"
)

// Options controls apply behavior.
type Options struct {
	// DryRun prevents execution of any deletion if true.
	DryRun bool

	// Confirmed indicates the caller has confirmed destructive actions.
	// If false, Apply will not execute regardless of DryRun.
	Confirmed bool
}

// ApplyResult reports what happened when a report was executed.
type ApplyResult struct {
	// Executed is the number of tables deleted.
	Executed int `json:"executed"`

	// Failed lists tables the catalog refused to delete while accepting
	// the rest.
	Failed []FailedDelete `json:"failed,omitempty"`
}

// FailedDelete pairs a rejected table with the catalog's error detail.
type FailedDelete struct {
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Cleaner finds and removes catalog tables that a crawler registered
// inside other tables' locations.
type Cleaner struct {
	catalog catalog.Client
	logger  *zap.Logger
}

// NewCleaner creates a Cleaner over the given catalog.
func NewCleaner(cat catalog.Client, logger *zap.Logger) *Cleaner {
	return &Cleaner{catalog: cat, logger: logger}
}

// PlanDelete lists a database's tables and reports the conflicting ones.
// Computing the report changes nothing until Apply executes it.
func (c *Cleaner) PlanDelete(ctx context.Context, database string) (*Report, error) {
	all, err := c.catalog.ListTables(ctx, database)
	if err != nil {
		return nil, err
	}

	report := FindConflicts(all)
	report.Database = database

	c.logger.Info("planned table deletes",
		zap.String("database", database),
		zap.Int("scanned", report.Scanned),
		zap.Int("deletes", len(report.Findings)),
		zap.Int("ambiguous", len(report.Ambiguous)))
	return &report, nil
}

// Apply deletes the tables named in a report from the catalog.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
// Per-table rejections are collected rather than aborting the run.
func (c *Cleaner) Apply(ctx context.Context, report *Report, opts Options) (*ApplyResult, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return &ApplyResult{}, nil
	}

	result := &ApplyResult{}
	if len(report.Findings) == 0 {
		return result, nil
	}

	names := make([]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		names = append(names, f.Table.Name)
	}

	failures, err := c.catalog.DeleteTables(ctx, report.Database, names)
	if err != nil {
		return result, fmt.Errorf("failed to delete tables: %w", err)
	}

	failed := make(map[string]catalog.BatchError, len(failures))
	for _, f := range failures {
		failed[f.Key] = f
	}
	for _, n := range names {
		if f, ok := failed[n]; ok {
			result.Failed = append(result.Failed, FailedDelete{Name: n, Code: f.Code, Message: f.Message})
			continue
		}
		result.Executed++
	}

	c.logger.Info("applied table deletes",
		zap.String("database", report.Database),
		zap.Int("executed", result.Executed),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
