package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"partition-manager/core/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/smithy-go"
)

// AWS Glue batch API limits.
const (
	maxBatchCreatePartitions = 100
	maxBatchDeletePartitions = 25
	maxBatchDeleteTables     = 100
)

// glueAPI is the subset of the Glue service client the catalog uses.
// It exists so tests can substitute a fake without AWS credentials.
type glueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error)
	GetPartition(ctx context.Context, params *glue.GetPartitionInput, optFns ...func(*glue.Options)) (*glue.GetPartitionOutput, error)
	GetPartitions(ctx context.Context, params *glue.GetPartitionsInput, optFns ...func(*glue.Options)) (*glue.GetPartitionsOutput, error)
	BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error)
	BatchDeletePartition(ctx context.Context, params *glue.BatchDeletePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchDeletePartitionOutput, error)
	UpdatePartition(ctx context.Context, params *glue.UpdatePartitionInput, optFns ...func(*glue.Options)) (*glue.UpdatePartitionOutput, error)
	BatchDeleteTable(ctx context.Context, params *glue.BatchDeleteTableInput, optFns ...func(*glue.Options)) (*glue.BatchDeleteTableOutput, error)
}

// GlueClient implements Client against AWS Glue.
type GlueClient struct {
	api glueAPI
}

var _ Client = (*GlueClient)(nil)

// NewGlueClient builds a Glue-backed catalog client from the configuration,
// resolving credentials through the default AWS chain.
func NewGlueClient(ctx context.Context, cfg Config) (*GlueClient, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		optFns = append(optFns, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	api := glue.NewFromConfig(awsCfg, func(o *glue.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &GlueClient{api: api}, nil
}

// GetTable fetches a single table.
func (g *GlueClient) GetTable(ctx context.Context, database, name string) (Table, error) {
	out, err := g.api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(name),
	})
	if err != nil {
		return Table{}, wrapGlueError(fmt.Sprintf("get table %s.%s", database, name), err)
	}
	return tableFromGlue(database, out.Table), nil
}

// ListTables lists every table in a database.
func (g *GlueClient) ListTables(ctx context.Context, database string) ([]Table, error) {
	pager := glue.NewGetTablesPaginator(g.api, &glue.GetTablesInput{
		DatabaseName: aws.String(database),
	})

	var tables []Table
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, wrapGlueError(fmt.Sprintf("list tables in %s", database), err)
		}
		for i := range page.TableList {
			tables = append(tables, tableFromGlue(database, &page.TableList[i]))
		}
	}
	return tables, nil
}

// ListPartitions lists every partition of a table, sorted by values so the
// resulting plans are reproducible run to run.
func (g *GlueClient) ListPartitions(ctx context.Context, database, table string) ([]Partition, error) {
	pager := glue.NewGetPartitionsPaginator(g.api, &glue.GetPartitionsInput{
		DatabaseName: aws.String(database),
		TableName:    aws.String(table),
	})

	var parts []Partition
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, wrapGlueError(fmt.Sprintf("list partitions of %s.%s", database, table), err)
		}
		for _, p := range page.Partitions {
			parts = append(parts, partitionFromGlue(p))
		}
	}

	sort.Slice(parts, func(i, j int) bool {
		return lessValues(parts[i].Values, parts[j].Values)
	})
	return parts, nil
}

// CreatePartitions registers new partitions in batches. Each partition
// inherits the table's storage descriptor with only the location swapped, so
// query engines pick up the table's format and serde.
func (g *GlueClient) CreatePartitions(ctx context.Context, database, table string, parts []Partition) ([]BatchError, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	tbl, err := g.api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return nil, wrapGlueError(fmt.Sprintf("get table %s.%s", database, table), err)
	}

	var failures []BatchError
	for _, batch := range chunk(parts, maxBatchCreatePartitions) {
		inputs := make([]types.PartitionInput, 0, len(batch))
		for _, p := range batch {
			inputs = append(inputs, types.PartitionInput{
				Values:            p.Values,
				StorageDescriptor: descriptorAt(tbl.Table.StorageDescriptor, p.Location),
			})
		}

		out, err := g.api.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
			DatabaseName:       aws.String(database),
			TableName:          aws.String(table),
			PartitionInputList: inputs,
		})
		if err != nil {
			return failures, wrapGlueError(fmt.Sprintf("create partitions in %s.%s", database, table), err)
		}
		failures = append(failures, partitionErrors(out.Errors)...)
	}
	return failures, nil
}

// DeletePartitions removes partitions by value tuples in batches.
func (g *GlueClient) DeletePartitions(ctx context.Context, database, table string, values [][]string) ([]BatchError, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var failures []BatchError
	for _, batch := range chunk(values, maxBatchDeletePartitions) {
		toDelete := make([]types.PartitionValueList, 0, len(batch))
		for _, vals := range batch {
			toDelete = append(toDelete, types.PartitionValueList{Values: vals})
		}

		out, err := g.api.BatchDeletePartition(ctx, &glue.BatchDeletePartitionInput{
			DatabaseName:       aws.String(database),
			TableName:          aws.String(table),
			PartitionsToDelete: toDelete,
		})
		if err != nil {
			return failures, wrapGlueError(fmt.Sprintf("delete partitions in %s.%s", database, table), err)
		}
		failures = append(failures, partitionErrors(out.Errors)...)
	}
	return failures, nil
}

// UpdatePartitionLocation points an existing partition at a new location,
// preserving the partition's own storage descriptor and parameters.
func (g *GlueClient) UpdatePartitionLocation(ctx context.Context, database, table string, values []string, location string) error {
	existing, err := g.api.GetPartition(ctx, &glue.GetPartitionInput{
		DatabaseName:    aws.String(database),
		TableName:       aws.String(table),
		PartitionValues: values,
	})
	if err != nil {
		return wrapGlueError(fmt.Sprintf("get partition %s of %s.%s", strings.Join(values, "/"), database, table), err)
	}

	_, err = g.api.UpdatePartition(ctx, &glue.UpdatePartitionInput{
		DatabaseName:       aws.String(database),
		TableName:          aws.String(table),
		PartitionValueList: values,
		PartitionInput: &types.PartitionInput{
			Values:            values,
			StorageDescriptor: descriptorAt(existing.Partition.StorageDescriptor, location),
			Parameters:        existing.Partition.Parameters,
		},
	})
	if err != nil {
		return wrapGlueError(fmt.Sprintf("update partition %s of %s.%s", strings.Join(values, "/"), database, table), err)
	}
	return nil
}

// DeleteTables removes tables by name in batches.
func (g *GlueClient) DeleteTables(ctx context.Context, database string, names []string) ([]BatchError, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var failures []BatchError
	for _, batch := range chunk(names, maxBatchDeleteTables) {
		out, err := g.api.BatchDeleteTable(ctx, &glue.BatchDeleteTableInput{
			DatabaseName:   aws.String(database),
			TablesToDelete: batch,
		})
		if err != nil {
			return failures, wrapGlueError(fmt.Sprintf("delete tables in %s", database), err)
		}
		for _, e := range out.Errors {
			failures = append(failures, BatchError{
				Key:     aws.ToString(e.TableName),
				Code:    errorCode(e.ErrorDetail),
				Message: errorMessage(e.ErrorDetail),
			})
		}
	}
	return failures, nil
}

func tableFromGlue(database string, t *types.Table) Table {
	tbl := Table{Database: database, Name: aws.ToString(t.Name)}
	if t.StorageDescriptor != nil {
		tbl.Location = aws.ToString(t.StorageDescriptor.Location)
	}
	return tbl
}

func partitionFromGlue(p types.Partition) Partition {
	part := Partition{Values: p.Values}
	if p.StorageDescriptor != nil {
		part.Location = storage.NormalizeLocation(aws.ToString(p.StorageDescriptor.Location))
	}
	return part
}

// descriptorAt clones a storage descriptor with the location replaced.
func descriptorAt(sd *types.StorageDescriptor, location string) *types.StorageDescriptor {
	var clone types.StorageDescriptor
	if sd != nil {
		clone = *sd
	}
	clone.Location = aws.String(location)
	return &clone
}

func partitionErrors(errs []types.PartitionError) []BatchError {
	out := make([]BatchError, 0, len(errs))
	for _, e := range errs {
		out = append(out, BatchError{
			Key:     strings.Join(e.PartitionValues, "/"),
			Code:    errorCode(e.ErrorDetail),
			Message: errorMessage(e.ErrorDetail),
		})
	}
	return out
}

func errorCode(d *types.ErrorDetail) string {
	if d == nil {
		return ""
	}
	return aws.ToString(d.ErrorCode)
}

func errorMessage(d *types.ErrorDetail) string {
	if d == nil {
		return ""
	}
	return aws.ToString(d.ErrorMessage)
}

// wrapGlueError folds Glue service errors into the package sentinels so
// callers can present actionable messages without importing the SDK.
func wrapGlueError(op string, err error) error {
	var notFound *types.EntityNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("failed to %s: %w: %s", op, ErrNotFound, aws.ToString(notFound.Message))
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
		return fmt.Errorf("failed to %s: %w: %s", op, ErrAccessDenied, apiErr.ErrorMessage())
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

func lessValues(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// chunk splits items into size-bounded runs, preserving order.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		chunks = append(chunks, items[:size:size])
		items = items[size:]
	}
	return append(chunks, items)
}
