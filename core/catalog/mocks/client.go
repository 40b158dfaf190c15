package mocks

import (
	"context"

	"partition-manager/core/catalog"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of catalog.Client
type Client struct {
	mock.Mock
}

func (m *Client) GetTable(ctx context.Context, database, name string) (catalog.Table, error) {
	args := m.Called(ctx, database, name)
	return args.Get(0).(catalog.Table), args.Error(1)
}

func (m *Client) ListTables(ctx context.Context, database string) ([]catalog.Table, error) {
	args := m.Called(ctx, database)
	tables, _ := args.Get(0).([]catalog.Table)
	return tables, args.Error(1)
}

func (m *Client) ListPartitions(ctx context.Context, database, table string) ([]catalog.Partition, error) {
	args := m.Called(ctx, database, table)
	parts, _ := args.Get(0).([]catalog.Partition)
	return parts, args.Error(1)
}

func (m *Client) CreatePartitions(ctx context.Context, database, table string, parts []catalog.Partition) ([]catalog.BatchError, error) {
	args := m.Called(ctx, database, table, parts)
	failures, _ := args.Get(0).([]catalog.BatchError)
	return failures, args.Error(1)
}

func (m *Client) DeletePartitions(ctx context.Context, database, table string, values [][]string) ([]catalog.BatchError, error) {
	args := m.Called(ctx, database, table, values)
	failures, _ := args.Get(0).([]catalog.BatchError)
	return failures, args.Error(1)
}

func (m *Client) UpdatePartitionLocation(ctx context.Context, database, table string, values []string, location string) error {
	args := m.Called(ctx, database, table, values, location)
	return args.Error(0)
}

func (m *Client) DeleteTables(ctx context.Context, database string, names []string) ([]catalog.BatchError, error) {
	args := m.Called(ctx, database, names)
	failures, _ := args.Get(0).([]catalog.BatchError)
	return failures, args.Error(1)
}
