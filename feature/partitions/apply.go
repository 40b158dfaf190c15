package partitions

import (
	"context"
	"fmt"
	"strings"

	"partition-manager/core/catalog"

	"go.uber.org/zap"
)

// ApplyResult reports what happened when a plan was executed.
type ApplyResult struct {
	// Executed is the number of actions that succeeded.
	Executed int `json:"executed"`

	// Failed lists actions the catalog rejected while accepting the rest.
	Failed []FailedAction `json:"failed,omitempty"`
}

// FailedAction pairs a rejected action with the catalog's error detail.
type FailedAction struct {
	Action  Action `json:"action"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Apply executes the actions in a plan against the catalog.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
// Per-item rejections are collected rather than aborting the run, so a
// partially failed run can be re-planned and retried; every workflow is
// idempotent on retry.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan, opts Options) (*ApplyResult, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return &ApplyResult{}, nil
	}

	var creates, updates, deletes []Action
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCreate:
			creates = append(creates, action)
		case ActionUpdate:
			updates = append(updates, action)
		case ActionDelete:
			deletes = append(deletes, action)
		}
	}

	result := &ApplyResult{}

	if len(creates) > 0 {
		inputs := make([]catalog.Partition, 0, len(creates))
		for _, a := range creates {
			inputs = append(inputs, catalog.Partition{Values: a.Values, Location: a.Location})
		}
		failures, err := r.catalog.CreatePartitions(ctx, plan.Database, plan.Table, inputs)
		if err != nil {
			return result, fmt.Errorf("failed to create partitions: %w", err)
		}
		result.record(creates, failures)
	}

	if len(deletes) > 0 {
		values := make([][]string, 0, len(deletes))
		for _, a := range deletes {
			values = append(values, a.Values)
		}
		failures, err := r.catalog.DeletePartitions(ctx, plan.Database, plan.Table, values)
		if err != nil {
			return result, fmt.Errorf("failed to delete partitions: %w", err)
		}
		result.record(deletes, failures)
	}

	for _, a := range updates {
		if err := r.catalog.UpdatePartitionLocation(ctx, plan.Database, plan.Table, a.Values, a.NewLocation); err != nil {
			return result, fmt.Errorf("failed to update partition %s: %w", strings.Join(a.Values, "/"), err)
		}
		result.Executed++
	}

	r.logger.Info("applied partition plan",
		zap.String("database", plan.Database),
		zap.String("table", plan.Table),
		zap.Int("executed", result.Executed),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// record splits attempted actions into executed and failed using the
// catalog's per-item rejection keys.
func (res *ApplyResult) record(attempted []Action, failures []catalog.BatchError) {
	failed := make(map[string]catalog.BatchError, len(failures))
	for _, f := range failures {
		failed[f.Key] = f
	}

	for _, a := range attempted {
		if f, ok := failed[strings.Join(a.Values, "/")]; ok {
			res.Failed = append(res.Failed, FailedAction{Action: a, Code: f.Code, Message: f.Message})
			continue
		}
		res.Executed++
	}
}
