package mocks

import (
	"context"

	"douban2feishu/core/feishu"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of feishu.Client
type Client struct {
	mock.Mock
}

func (m *Client) ListFields(ctx context.Context, creds feishu.Credentials, appToken, tableID string) ([]feishu.Field, error) {
	args := m.Called(ctx, creds, appToken, tableID)
	if fields, ok := args.Get(0).([]feishu.Field); ok {
		return fields, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateField(ctx context.Context, creds feishu.Credentials, appToken, tableID string, spec feishu.FieldSpec) (*feishu.Field, error) {
	args := m.Called(ctx, creds, appToken, tableID, spec)
	if field, ok := args.Get(0).(*feishu.Field); ok {
		return field, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListAllRecords(ctx context.Context, creds feishu.Credentials, appToken, tableID string, pageSize int) ([]feishu.Record, error) {
	args := m.Called(ctx, creds, appToken, tableID, pageSize)
	if records, ok := args.Get(0).([]feishu.Record); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) BatchCreateRecords(ctx context.Context, creds feishu.Credentials, appToken, tableID string, fields []map[string]any) ([]feishu.Record, error) {
	args := m.Called(ctx, creds, appToken, tableID, fields)
	if records, ok := args.Get(0).([]feishu.Record); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) BatchUpdateRecords(ctx context.Context, creds feishu.Credentials, appToken, tableID string, updates []feishu.RecordUpdate) error {
	args := m.Called(ctx, creds, appToken, tableID, updates)
	return args.Error(0)
}

func (m *Client) DeleteRecord(ctx context.Context, creds feishu.Credentials, appToken, tableID, recordID string) error {
	args := m.Called(ctx, creds, appToken, tableID, recordID)
	return args.Error(0)
}
