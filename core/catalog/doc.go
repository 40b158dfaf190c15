// Package catalog talks to the partition catalog that query engines read.
//
// # Client
//
// Client is the interface the reconciliation features depend on. The
// production implementation is GlueClient, backed by AWS Glue. Batch
// mutations return per-item BatchError values for entries the service
// rejected while accepting the rest; a non-nil error means the call itself
// failed and the batch state is unknown.
//
// # Errors
//
// Service failures are folded into ErrNotFound and ErrAccessDenied where
// they map cleanly, so callers can branch with errors.Is instead of
// inspecting SDK types.
package catalog
