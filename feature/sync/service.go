package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"douban2feishu/core/config"
	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/diff"
	"douban2feishu/feature/sync/executor"
	"douban2feishu/feature/sync/mapping"
	"douban2feishu/feature/sync/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSyncInProgress is returned when a run is already active for the
// same (user, target) pair.
var ErrSyncInProgress = errors.New("a sync run is already in progress for this target")

// Resolver resolves field mappings. *mapping.Resolver is the production
// implementation.
type Resolver interface {
	Resolve(ctx context.Context, userID string, target models.TargetConfig) (*models.FieldMapping, []mapping.FieldError, error)
	Preview(ctx context.Context, target models.TargetConfig) (*mapping.Preview, error)
	ClearCache(ctx context.Context, targetKey string) error
}

// Applier applies change sets. *executor.Executor is the production
// implementation.
type Applier interface {
	Execute(ctx context.Context, target models.TargetConfig, mapping *models.FieldMapping, cs *models.ChangeSet, hooks executor.Hooks) *executor.Result
}

// StateTracker records coarse run progress. *state.Tracker is the
// production implementation.
type StateTracker interface {
	Begin(ctx context.Context, userID, targetKey string, total int)
	Advance(ctx context.Context, userID, targetKey string, delta int, phase models.Phase)
	Get(ctx context.Context, userID, targetKey string) *models.SyncState
	Clear(ctx context.Context, userID, targetKey string)
}

// RunStore keeps the durable record of finished runs. *history.Store is
// the production implementation.
type RunStore interface {
	Record(ctx context.Context, userID string, target models.TargetConfig, summary *models.RunSummary) error
}

// Service orchestrates sync runs: validate, resolve the mapping, fetch
// remote rows, diff, apply, record.
type Service struct {
	client   feishu.Client
	resolver Resolver
	applier  Applier
	tracker  StateTracker
	runs     RunStore
	cfg      config.SyncConfig
	logger   *zap.Logger
}

// NewService creates a sync service.
func NewService(client feishu.Client, resolver Resolver, applier Applier, tracker StateTracker, runs RunStore, cfg config.SyncConfig, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		applier:  applier,
		tracker:  tracker,
		runs:     runs,
		cfg:      cfg,
		logger:   logger,
	}
}

// Sync runs one full synchronization of a snapshot into the target table.
// The run is serialized per (user, target) by a TTL soft lock; a second
// call while one is active returns ErrSyncInProgress.
func (s *Service) Sync(ctx context.Context, userID string, target models.TargetConfig, records []models.DomainRecord, opts models.Options) (*models.RunSummary, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}
	if err := ValidateRecords(target, records); err != nil {
		return nil, err
	}

	targetKey := target.TargetKey()
	if st := s.tracker.Get(ctx, userID, targetKey); st != nil && st.Phase != models.PhaseDone {
		return nil, ErrSyncInProgress
	}

	startedAt := time.Now()
	s.tracker.Begin(ctx, userID, targetKey, len(records))
	defer s.tracker.Clear(ctx, userID, targetKey)

	fieldMapping, fieldErrs, err := s.resolver.Resolve(ctx, userID, target)
	if err != nil {
		return nil, fmt.Errorf("mapping resolution failed: %w", err)
	}
	if err := requireCoreColumns(fieldMapping, target.ContentType); err != nil {
		return nil, err
	}

	s.tracker.Advance(ctx, userID, targetKey, 0, models.PhaseFetching)
	existing, err := s.client.ListAllRecords(ctx, target.Creds, target.AppToken, target.TableID, s.cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing rows: %w", err)
	}

	s.tracker.Advance(ctx, userID, targetKey, 0, models.PhaseDiffing)
	fields := catalog.Fields(target.ContentType)
	cs, err := diff.Diff(existing, records, fieldMapping, fields, diff.Options{
		FullSync:      opts.FullSync,
		DeleteOrphans: opts.DeleteOrphans,
	}, s.logger)
	if err != nil {
		return nil, err
	}

	result := s.apply(ctx, userID, target, fieldMapping, cs, opts)

	summary := &models.RunSummary{
		RunID:      uuid.New().String(),
		Total:      len(records),
		Created:    result.Created,
		Updated:    result.Updated,
		Deleted:    result.Deleted,
		Failed:     result.Failed,
		Errors:     result.Messages(),
		Success:    result.Failed == 0,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	for _, fe := range fieldErrs {
		summary.Errors = append(summary.Errors, fmt.Sprintf("field %s: %s", fe.DomainName, fe.Message))
	}

	s.tracker.Advance(ctx, userID, targetKey, 0, models.PhaseDone)
	s.record(ctx, userID, target, summary)

	s.logger.Info("Sync run finished",
		zap.String("runId", summary.RunID),
		zap.String("targetKey", targetKey),
		zap.String("contentType", string(target.ContentType)),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("failed", summary.Failed),
		zap.Bool("success", summary.Success),
	)
	return summary, nil
}

// apply runs the executor with progress bridged into the state tracker
// and the caller's progress callback.
func (s *Service) apply(ctx context.Context, userID string, target models.TargetConfig, fieldMapping *models.FieldMapping, cs *models.ChangeSet, opts models.Options) *executor.Result {
	targetKey := target.TargetKey()
	prev := 0
	return s.applier.Execute(ctx, target, fieldMapping, cs, executor.Hooks{
		OnPhase: func(phase models.Phase, total int) {
			s.tracker.Advance(ctx, userID, targetKey, 0, phase)
		},
		OnProgress: func(processed, total int) {
			s.tracker.Advance(ctx, userID, targetKey, processed-prev, "")
			prev = processed
			if opts.OnProgress != nil {
				opts.OnProgress(processed, total)
			}
		},
	})
}

// record persists the run summary. History is best effort: a write
// failure is logged, never surfaced to the caller.
func (s *Service) record(ctx context.Context, userID string, target models.TargetConfig, summary *models.RunSummary) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, userID, target, summary); err != nil {
		s.logger.Warn("Failed to record run history",
			zap.String("runId", summary.RunID),
			zap.Error(err),
		)
	}
}

// requireCoreColumns rejects a mapping that cannot address the required
// catalog fields. An unmapped optional field just drops that column from
// payloads; an unmapped required field would corrupt matching.
func requireCoreColumns(m *models.FieldMapping, contentType catalog.ContentType) error {
	for _, f := range catalog.RequiredFields(contentType) {
		if _, ok := m.ColumnID(f.DomainName); !ok {
			return fmt.Errorf("mapping has no column for required field %s", f.DomainName)
		}
	}
	return nil
}

// GetRunState returns the coarse progress of the active run, or nil when
// none is active.
func (s *Service) GetRunState(ctx context.Context, userID string, target models.TargetConfig) *models.SyncState {
	return s.tracker.Get(ctx, userID, target.TargetKey())
}

// PreviewMapping dry-runs mapping resolution against the live table.
func (s *Service) PreviewMapping(ctx context.Context, target models.TargetConfig) (*mapping.Preview, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}
	return s.resolver.Preview(ctx, target)
}

// ClearMappingCache drops the cached mapping for a target. The persisted
// mapping survives and reseeds the cache on the next resolve.
func (s *Service) ClearMappingCache(ctx context.Context, target models.TargetConfig) error {
	return s.resolver.ClearCache(ctx, target.TargetKey())
}
