package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"douban2feishu/core/cache"
	"douban2feishu/feature/sync/models"

	"go.uber.org/zap"
)

// Tracker records coarse sync progress in the fast store. The record acts
// as a soft lock and a polling surface: it is overwritten by Begin,
// advanced at phase boundaries, and expires with its TTL. It is not the
// durable sync history.
type Tracker struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewTracker creates a tracker writing states with the given TTL.
func NewTracker(store cache.Store, ttl time.Duration, logger *zap.Logger) *Tracker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Tracker{store: store, ttl: ttl, logger: logger}
}

func stateKey(userID, targetKey string) string {
	return fmt.Sprintf("sync:state:%s:%s", userID, targetKey)
}

// Begin writes a fresh state for the run, overwriting any prior state for
// the same key. Mutual exclusion is advisory: callers wanting
// at-most-one-concurrent-sync check Get before calling Begin.
func (t *Tracker) Begin(ctx context.Context, userID, targetKey string, total int) {
	st := models.SyncState{
		UserID:    userID,
		TargetKey: targetKey,
		Phase:     models.PhaseResolving,
		Processed: 0,
		Total:     total,
		StartedAt: time.Now(),
	}
	t.write(ctx, st)
}

// Advance moves the run forward by delta processed items and, when phase
// is non-empty, sets the phase. Missing prior state (expired mid-run)
// restarts from the write.
func (t *Tracker) Advance(ctx context.Context, userID, targetKey string, delta int, phase models.Phase) {
	st := t.read(ctx, userID, targetKey)
	if st == nil {
		st = &models.SyncState{UserID: userID, TargetKey: targetKey, StartedAt: time.Now()}
	}
	st.Processed += delta
	if phase != "" {
		st.Phase = phase
	}
	t.write(ctx, *st)
}

// Get returns the current state, or nil when none exists. Cache
// unavailability and decode failures also return nil: for this soft-state
// layer availability wins over strict consistency.
func (t *Tracker) Get(ctx context.Context, userID, targetKey string) *models.SyncState {
	return t.read(ctx, userID, targetKey)
}

// Clear removes the state record, releasing the advisory lock early
// instead of waiting for the TTL.
func (t *Tracker) Clear(ctx context.Context, userID, targetKey string) {
	if err := t.store.Del(ctx, stateKey(userID, targetKey)); err != nil {
		t.logger.Warn("Failed to clear sync state", zap.String("targetKey", targetKey), zap.Error(err))
	}
}

func (t *Tracker) read(ctx context.Context, userID, targetKey string) *models.SyncState {
	var st models.SyncState
	if err := t.store.GetJSON(ctx, stateKey(userID, targetKey), &st); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			t.logger.Warn("Failed to read sync state, treating as absent",
				zap.String("targetKey", targetKey),
				zap.Error(err),
			)
		}
		return nil
	}
	return &st
}

func (t *Tracker) write(ctx context.Context, st models.SyncState) {
	if err := t.store.SetJSON(ctx, stateKey(st.UserID, st.TargetKey), st, t.ttl); err != nil {
		t.logger.Warn("Failed to write sync state",
			zap.String("targetKey", st.TargetKey),
			zap.Error(err),
		)
	}
}
