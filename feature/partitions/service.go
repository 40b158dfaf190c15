package partitions

import (
	"context"

	"go.uber.org/zap"
)

// Service exposes partition reconciliation to the HTTP layer.
type Service struct {
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewService creates a new partitions service.
func NewService(reconciler *Reconciler, logger *zap.Logger) *Service {
	return &Service{reconciler: reconciler, logger: logger}
}

// CreateResult bundles a computed plan with its apply outcome.
type CreateResult struct {
	Plan   *Plan        `json:"plan"`
	Result *ApplyResult `json:"result"`
}

// ReconcileCreate plans creates for partitions missing from the catalog
// and, unless dryRun is set, applies them immediately. Triggered runs are
// pre-authorized, so no separate confirmation step applies here.
func (s *Service) ReconcileCreate(ctx context.Context, database, table string, dryRun bool, limitDays int) (*CreateResult, error) {
	opts := Options{DryRun: dryRun, Confirmed: true, LimitDays: limitDays}

	plan, err := s.reconciler.PlanCreate(ctx, database, table, opts)
	if err != nil {
		return nil, err
	}

	result, err := s.reconciler.Apply(ctx, plan, opts)
	if err != nil {
		return nil, err
	}

	return &CreateResult{Plan: plan, Result: result}, nil
}
