package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"douban2feishu/feature/sync/models"

	"gorm.io/gorm"
)

// Run is the durable audit record of one finished sync run. Unlike the
// TTL-bounded state tracker entry, runs are kept indefinitely.
type Run struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	RunID       string `gorm:"size:64;uniqueIndex" json:"runId"`
	UserID      string `gorm:"size:64;index:idx_run_user_target,priority:1" json:"userId"`
	TargetKey   string `gorm:"size:128;index:idx_run_user_target,priority:2" json:"targetKey"`
	ContentType string `gorm:"size:32" json:"contentType"`
	Total       int    `json:"total"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Deleted     int    `json:"deleted"`
	Failed      int    `json:"failed"`
	Success     bool   `json:"success"`
	// Errors holds the run's error messages as a JSON array.
	Errors     string    `gorm:"type:text" json:"errors,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	CreatedAt  time.Time `json:"-"`
}

// TableName sets the table for run records.
func (Run) TableName() string {
	return "sync_runs"
}

// Store persists finished sync runs.
type Store struct {
	db *gorm.DB
}

// NewStore creates a history store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the backing table if needed.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Run{})
}

// Record writes one finished run.
func (s *Store) Record(ctx context.Context, userID string, target models.TargetConfig, summary *models.RunSummary) error {
	errs := ""
	if len(summary.Errors) > 0 {
		encoded, err := json.Marshal(summary.Errors)
		if err != nil {
			return fmt.Errorf("failed to encode run errors: %w", err)
		}
		errs = string(encoded)
	}

	run := Run{
		RunID:       summary.RunID,
		UserID:      userID,
		TargetKey:   target.TargetKey(),
		ContentType: string(target.ContentType),
		Total:       summary.Total,
		Created:     summary.Created,
		Updated:     summary.Updated,
		Deleted:     summary.Deleted,
		Failed:      summary.Failed,
		Success:     summary.Success,
		Errors:      errs,
		StartedAt:   summary.StartedAt,
		FinishedAt:  summary.FinishedAt,
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", summary.RunID, err)
	}
	return nil
}

// Recent returns the latest runs for a (user, target) pair, newest first.
func (s *Store) Recent(ctx context.Context, userID, targetKey string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []Run
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_key = ?", userID, targetKey).
		Order("finished_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", targetKey, err)
	}
	return runs, nil
}
