package mocks

import (
	"context"

	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/mock"
)

// PersistentStore is a mock implementation of mapping.PersistentStore
type PersistentStore struct {
	mock.Mock
}

func (m *PersistentStore) Load(ctx context.Context, userID, targetKey string) (*models.FieldMapping, error) {
	args := m.Called(ctx, userID, targetKey)
	if mapping, ok := args.Get(0).(*models.FieldMapping); ok {
		return mapping, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersistentStore) Save(ctx context.Context, userID, targetKey string, mapping *models.FieldMapping) error {
	args := m.Called(ctx, userID, targetKey, mapping)
	return args.Error(0)
}

func (m *PersistentStore) Delete(ctx context.Context, userID, targetKey string) error {
	args := m.Called(ctx, userID, targetKey)
	return args.Error(0)
}
