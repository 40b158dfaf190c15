// Package partitions reconciles a table's catalog partitions against the
// data that physically exists in object storage.
//
// Discovery walks the table's root prefix breadth-first and parses each
// directory path into a four-part temporal key (year, month, day, hour),
// accepting both plain 2019/01/02/03 layouts and hive-style
// year=2019/month=01/day=02/hour=03 layouts. The reconciler diffs the
// discovered partitions against an index of the catalog's listing and
// produces a Plan of create, update and delete actions. Plans are pure
// data: nothing is mutated until Apply executes them, which is what makes
// dry runs and confirmation prompts possible.
//
// # Components
//
//   - Discoverer: walks storage and yields physically present partitions.
//   - Index: value-keyed lookup of the catalog's partition listing.
//   - Reconciler: computes plans (PlanCreate, PlanUpdate, PlanDelete) and
//     applies them.
//   - Service, Handler: expose the create workflow over HTTP for
//     scheduled triggers.
//
// # HTTP Endpoints
//
//   - POST /partitions/reconcile : discover and create missing partitions.
package partitions
