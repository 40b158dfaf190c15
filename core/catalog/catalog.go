package catalog

import (
	"context"
	"errors"
)

// Table is a catalog table reference.
type Table struct {
	// Database is the catalog database holding the table.
	Database string `json:"database"`
	// Name is the table name, unique within the database.
	Name string `json:"name"`
	// Location is the table's storage root (s3:// URI).
	Location string `json:"location"`
}

// Partition is the wire shape of a catalog partition record.
type Partition struct {
	// Values are the partition key values in declaration order.
	Values []string `json:"values"`
	// Location is the storage prefix holding the partition's data.
	Location string `json:"location"`
}

// BatchError describes a single failed item inside an otherwise accepted
// batch call.
type BatchError struct {
	// Key identifies the failed item: joined partition values or a table name.
	Key string `json:"key"`
	// Code is the service error code.
	Code string `json:"code"`
	// Message is the service error message.
	Message string `json:"message"`
}

var (
	// ErrNotFound indicates the requested database, table or partition does
	// not exist in the catalog.
	ErrNotFound = errors.New("catalog entity not found")
	// ErrAccessDenied indicates the caller lacks permission for the catalog
	// operation.
	ErrAccessDenied = errors.New("catalog access denied")
)

// Client defines the catalog operations the reconciler depends on.
//
// Batch methods tolerate partial failure: they return one BatchError per
// rejected item and a non-nil error only when a whole call failed. Callers
// decide whether to re-run; nothing is retried here.
type Client interface {
	// GetTable fetches a single table.
	GetTable(ctx context.Context, database, name string) (Table, error)
	// ListTables lists every table in a database.
	ListTables(ctx context.Context, database string) ([]Table, error)
	// ListPartitions lists every partition of a table, sorted by values.
	ListPartitions(ctx context.Context, database, table string) ([]Partition, error)
	// CreatePartitions registers new partitions.
	CreatePartitions(ctx context.Context, database, table string, parts []Partition) ([]BatchError, error)
	// DeletePartitions removes partitions by their value tuples.
	DeletePartitions(ctx context.Context, database, table string, values [][]string) ([]BatchError, error)
	// UpdatePartitionLocation points an existing partition at a new location.
	UpdatePartitionLocation(ctx context.Context, database, table string, values []string, location string) error
	// DeleteTables removes tables by name.
	DeleteTables(ctx context.Context, database string, names []string) ([]BatchError, error)
}
