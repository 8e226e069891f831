package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"douban2feishu/core/cache"
	"douban2feishu/core/cache/mocks"
	"douban2feishu/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTracker_BeginWritesFreshState(t *testing.T) {
	store := new(mocks.Store)
	tracker := NewTracker(store, 10*time.Minute, zap.NewNop())

	var written models.SyncState
	store.On("SetJSON", mock.Anything, "sync:state:u1:app:tbl", mock.Anything, 10*time.Minute).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(models.SyncState)
		}).
		Return(nil)

	tracker.Begin(context.Background(), "u1", "app:tbl", 42)

	store.AssertExpectations(t)
	assert.Equal(t, models.PhaseResolving, written.Phase)
	assert.Equal(t, 42, written.Total)
	assert.Equal(t, 0, written.Processed)
	assert.False(t, written.StartedAt.IsZero())
}

func TestTracker_AdvanceAccumulates(t *testing.T) {
	store := new(mocks.Store)
	tracker := NewTracker(store, 10*time.Minute, zap.NewNop())

	prior := models.SyncState{
		UserID: "u1", TargetKey: "app:tbl",
		Phase: models.PhaseCreating, Processed: 10, Total: 42,
		StartedAt: time.Now(),
	}
	payload, err := json.Marshal(prior)
	require.NoError(t, err)

	store.On("GetJSON", mock.Anything, "sync:state:u1:app:tbl", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.SyncState)
			require.NoError(t, json.Unmarshal(payload, dest))
		}).
		Return(nil)

	var written models.SyncState
	store.On("SetJSON", mock.Anything, "sync:state:u1:app:tbl", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(models.SyncState)
		}).
		Return(nil)

	tracker.Advance(context.Background(), "u1", "app:tbl", 5, models.PhaseUpdating)

	assert.Equal(t, 15, written.Processed)
	assert.Equal(t, models.PhaseUpdating, written.Phase)
}

func TestTracker_GetTreatsFailuresAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"miss", cache.ErrMiss},
		{"cache down", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.Store)
			store.On("GetJSON", mock.Anything, mock.Anything, mock.Anything).Return(tt.err)

			tracker := NewTracker(store, time.Minute, zap.NewNop())
			assert.Nil(t, tracker.Get(context.Background(), "u1", "app:tbl"))
		})
	}
}

func TestTracker_WriteFailureDoesNotPanic(t *testing.T) {
	store := new(mocks.Store)
	store.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused"))

	tracker := NewTracker(store, time.Minute, zap.NewNop())
	tracker.Begin(context.Background(), "u1", "app:tbl", 1)
	store.AssertExpectations(t)
}

func TestTracker_Clear(t *testing.T) {
	store := new(mocks.Store)
	store.On("Del", mock.Anything, []string{"sync:state:u1:app:tbl"}).Return(nil)

	tracker := NewTracker(store, time.Minute, zap.NewNop())
	tracker.Clear(context.Background(), "u1", "app:tbl")
	store.AssertExpectations(t)
}
