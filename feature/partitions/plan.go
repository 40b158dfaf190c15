package partitions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"partition-manager/core/catalog"
	"partition-manager/core/storage"

	"go.uber.org/zap"
)

// ActionType represents the type of catalog mutation.
type ActionType string

const (
	// ActionCreate registers a discovered partition in the catalog.
	ActionCreate ActionType = "create"
	// ActionUpdate points an existing catalog partition at a new location.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a partition from the catalog.
	ActionDelete ActionType = "delete"
)

// DeleteReason explains why a partition is planned for removal.
type DeleteReason string

const (
	// ReasonNoData marks partitions whose declared location holds no objects.
	ReasonNoData DeleteReason = "no_data"
	// ReasonLocationMismatch marks partitions whose declared location does
	// not encode their declared values.
	ReasonLocationMismatch DeleteReason = "location_mismatch"
	// ReasonOrphaned marks partitions removed unconditionally by delete-all.
	ReasonOrphaned DeleteReason = "orphaned"
)

// DeleteMode selects which catalog partitions PlanDelete targets.
type DeleteMode string

const (
	// DeleteAll targets every partition in the table.
	DeleteAll DeleteMode = "all"
	// DeleteBad targets partitions with mismatched locations plus
	// partitions with no data.
	DeleteBad DeleteMode = "bad"
	// DeleteMissing targets only partitions with no data.
	DeleteMissing DeleteMode = "missing"
)

// Action is a single planned catalog mutation. Actions are pure data;
// computing a plan changes nothing until Apply executes it.
type Action struct {
	// Type specifies the mutation to perform.
	Type ActionType `json:"type"`

	// Values addresses the partition using the exact strings the catalog
	// stores, or the strings matched on disk for creates.
	Values []string `json:"values"`

	// Location is the disk location for creates and the current catalog
	// location for updates and deletes.
	Location string `json:"location,omitempty"`

	// NewLocation is the relocation target for updates.
	NewLocation string `json:"new_location,omitempty"`

	// Reason is set on deletes.
	Reason DeleteReason `json:"reason,omitempty"`
}

// Plan is the computed set of catalog mutations for one table.
type Plan struct {
	Database string   `json:"database"`
	Table    string   `json:"table"`
	Actions  []Action `json:"actions"`
	Summary  Summary  `json:"summary"`
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	// Discovered is the number of partitions found on disk.
	Discovered int `json:"discovered"`

	// InCatalog is the number of partitions listed in the catalog.
	InCatalog int `json:"in_catalog"`

	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// Options controls planning and apply behavior.
type Options struct {
	// DryRun prevents execution of any mutation if true.
	DryRun bool

	// Confirmed indicates the caller has confirmed destructive actions.
	// If false, Apply will not execute regardless of DryRun.
	Confirmed bool

	// LimitDays restricts creates to partitions at most this many days old.
	// Zero means no limit.
	LimitDays int
}

// Reconciler computes and applies catalog mutation plans, one table at a
// time, from a point-in-time read of catalog and storage state.
type Reconciler struct {
	catalog catalog.Client
	store   ObjectStore
	logger  *zap.Logger

	// now is replaceable so tests can pin the limit-days cutoff.
	now func() time.Time
}

// NewReconciler creates a Reconciler over the given catalog and store.
func NewReconciler(cat catalog.Client, store ObjectStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{catalog: cat, store: store, logger: logger, now: time.Now}
}

// PlanCreate diffs the partitions present on disk against the catalog and
// plans a create for every partition the catalog is missing. Actions keep
// discovery order, so repeated runs over the same state produce identical
// plans.
func (r *Reconciler) PlanCreate(ctx context.Context, database, table string, opts Options) (*Plan, error) {
	root, err := r.tableRoot(ctx, database, table)
	if err != nil {
		return nil, err
	}

	index, err := r.catalogIndex(ctx, database, table)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if opts.LimitDays > 0 {
		now := r.now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		cutoff = today.AddDate(0, 0, -opts.LimitDays)
	}

	plan := &Plan{Database: database, Table: table}
	plan.Summary.InCatalog = index.Len()

	for res := range NewDiscoverer(r.store).Discover(ctx, root) {
		if res.Err != nil {
			return nil, res.Err
		}
		plan.Summary.Discovered++

		d := res.Descriptor
		if !cutoff.IsZero() && d.Value.Date().Before(cutoff) {
			continue
		}
		if _, exists := index.Get(d.Value); exists {
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Type:     ActionCreate,
			Values:   d.Raw,
			Location: d.Location,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan.Summary.Creates = len(plan.Actions)

	r.logger.Info("planned partition creates",
		zap.String("database", database),
		zap.String("table", table),
		zap.Int("discovered", plan.Summary.Discovered),
		zap.Int("creates", plan.Summary.Creates))
	return plan, nil
}

// PlanUpdate finds partitions whose data moved on disk: the same key exists
// in the catalog but at a different location. Each match becomes an update
// pointing the catalog entry at the discovered location.
func (r *Reconciler) PlanUpdate(ctx context.Context, database, table string) (*Plan, error) {
	root, err := r.tableRoot(ctx, database, table)
	if err != nil {
		return nil, err
	}

	index, err := r.catalogIndex(ctx, database, table)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Database: database, Table: table}
	plan.Summary.InCatalog = index.Len()

	for res := range NewDiscoverer(r.store).Discover(ctx, root) {
		if res.Err != nil {
			return nil, res.Err
		}
		plan.Summary.Discovered++

		d := res.Descriptor
		existing, ok := index.Get(d.Value)
		if !ok || existing.Location == d.Location {
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Type:        ActionUpdate,
			Values:      existing.Raw,
			Location:    existing.Location,
			NewLocation: d.Location,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan.Summary.Updates = len(plan.Actions)

	r.logger.Info("planned partition updates",
		zap.String("database", database),
		zap.String("table", table),
		zap.Int("discovered", plan.Summary.Discovered),
		zap.Int("updates", plan.Summary.Updates))
	return plan, nil
}

// PlanDelete plans partition removals according to mode. DeleteAll targets
// every catalog partition. DeleteBad targets partitions whose declared
// location does not encode their declared values, plus partitions whose
// location holds no data. DeleteMissing targets only the latter. A
// partition that qualifies both ways reports the location mismatch, the
// more specific diagnosis.
func (r *Reconciler) PlanDelete(ctx context.Context, database, table string, mode DeleteMode) (*Plan, error) {
	parts, err := r.catalog.ListPartitions(ctx, database, table)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Database: database, Table: table}
	plan.Summary.InCatalog = len(parts)

	for _, p := range parts {
		reason, err := r.deleteReason(ctx, p, mode)
		if err != nil {
			return nil, err
		}
		if reason == "" {
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Type:     ActionDelete,
			Values:   p.Values,
			Location: p.Location,
			Reason:   reason,
		})
	}
	plan.Summary.Deletes = len(plan.Actions)

	r.logger.Info("planned partition deletes",
		zap.String("database", database),
		zap.String("table", table),
		zap.String("mode", string(mode)),
		zap.Int("in_catalog", plan.Summary.InCatalog),
		zap.Int("deletes", plan.Summary.Deletes))
	return plan, nil
}

// deleteReason decides whether one catalog partition should be removed
// under the given mode, returning the empty reason to keep it.
func (r *Reconciler) deleteReason(ctx context.Context, p catalog.Partition, mode DeleteMode) (DeleteReason, error) {
	if mode == DeleteAll {
		return ReasonOrphaned, nil
	}

	if mode == DeleteBad && !locationConsistent(p) {
		return ReasonLocationMismatch, nil
	}

	hasData, err := r.store.HasAnyObject(ctx, p.Location)
	if err != nil {
		return "", fmt.Errorf("failed to probe %s: %w", p.Location, err)
	}
	if !hasData {
		return ReasonNoData, nil
	}
	return "", nil
}

// locationConsistent reports whether the trailing segments of a partition's
// declared location parse back to its declared values. Locations that
// cannot be parsed at all are inconsistent.
func locationConsistent(p catalog.Partition) bool {
	declared, err := ParseValues(p.Values)
	if err != nil {
		return false
	}

	_, key, err := storage.ParseURI(p.Location)
	if err != nil {
		return false
	}
	segments := storage.SplitKeySegments(key)
	if len(segments) < 4 {
		return false
	}

	value, _, state := Match(segments[len(segments)-4:])
	return state == MatchComplete && value == declared
}

func (r *Reconciler) tableRoot(ctx context.Context, database, table string) (string, error) {
	tbl, err := r.catalog.GetTable(ctx, database, table)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(tbl.Location, storage.Scheme) {
		return "", fmt.Errorf("table %s.%s is not backed by s3: %q", database, table, tbl.Location)
	}
	return storage.NormalizeLocation(tbl.Location), nil
}

func (r *Reconciler) catalogIndex(ctx context.Context, database, table string) (*Index, error) {
	parts, err := r.catalog.ListPartitions(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return BuildIndex(parts)
}
