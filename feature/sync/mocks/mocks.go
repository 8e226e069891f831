package mocks

import (
	"context"

	"douban2feishu/feature/sync/executor"
	"douban2feishu/feature/sync/mapping"
	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/mock"
)

// Resolver is a mock implementation of sync.Resolver
type Resolver struct {
	mock.Mock
}

func (m *Resolver) Resolve(ctx context.Context, userID string, target models.TargetConfig) (*models.FieldMapping, []mapping.FieldError, error) {
	args := m.Called(ctx, userID, target)
	var fm *models.FieldMapping
	if v, ok := args.Get(0).(*models.FieldMapping); ok {
		fm = v
	}
	var errs []mapping.FieldError
	if v, ok := args.Get(1).([]mapping.FieldError); ok {
		errs = v
	}
	return fm, errs, args.Error(2)
}

func (m *Resolver) Preview(ctx context.Context, target models.TargetConfig) (*mapping.Preview, error) {
	args := m.Called(ctx, target)
	if p, ok := args.Get(0).(*mapping.Preview); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Resolver) ClearCache(ctx context.Context, targetKey string) error {
	args := m.Called(ctx, targetKey)
	return args.Error(0)
}

// Applier is a mock implementation of sync.Applier
type Applier struct {
	mock.Mock
}

func (m *Applier) Execute(ctx context.Context, target models.TargetConfig, fieldMapping *models.FieldMapping, cs *models.ChangeSet, hooks executor.Hooks) *executor.Result {
	args := m.Called(ctx, target, fieldMapping, cs, hooks)
	if r, ok := args.Get(0).(*executor.Result); ok {
		return r
	}
	return &executor.Result{}
}

// StateTracker is a mock implementation of sync.StateTracker
type StateTracker struct {
	mock.Mock
}

func (m *StateTracker) Begin(ctx context.Context, userID, targetKey string, total int) {
	m.Called(ctx, userID, targetKey, total)
}

func (m *StateTracker) Advance(ctx context.Context, userID, targetKey string, delta int, phase models.Phase) {
	m.Called(ctx, userID, targetKey, delta, phase)
}

func (m *StateTracker) Get(ctx context.Context, userID, targetKey string) *models.SyncState {
	args := m.Called(ctx, userID, targetKey)
	if st, ok := args.Get(0).(*models.SyncState); ok {
		return st
	}
	return nil
}

func (m *StateTracker) Clear(ctx context.Context, userID, targetKey string) {
	m.Called(ctx, userID, targetKey)
}

// RunStore is a mock implementation of sync.RunStore
type RunStore struct {
	mock.Mock
}

func (m *RunStore) Record(ctx context.Context, userID string, target models.TargetConfig, summary *models.RunSummary) error {
	args := m.Called(ctx, userID, target, summary)
	return args.Error(0)
}
