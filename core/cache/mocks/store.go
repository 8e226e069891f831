package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of cache.Store
type Store struct {
	mock.Mock
}

func (m *Store) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *Store) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *Store) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// GetJSON records the call; tests that need to fill dest should use
// .Run(func(args mock.Arguments) { ... }) to unmarshal a payload into args.Get(2).
func (m *Store) GetJSON(ctx context.Context, key string, dest any) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *Store) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}
