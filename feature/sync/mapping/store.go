package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row is the persisted form of a field mapping, scoped to one
// (user, target) pair. Column assignments are stored as a JSON object.
type Row struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:64;uniqueIndex:idx_mapping_user_target,priority:1"`
	TargetKey       string `gorm:"size:128;uniqueIndex:idx_mapping_user_target,priority:2"`
	ContentType     string `gorm:"size:32"`
	StrategyVersion int
	Columns         string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName sets the table for mapping rows.
func (Row) TableName() string {
	return "field_mappings"
}

// Store persists field mappings in the database.
type Store struct {
	db *gorm.DB
}

// NewStore creates a mapping store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the backing table if needed.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Row{})
}

// Load returns the persisted mapping for a (user, target) pair, or nil
// when none exists.
func (s *Store) Load(ctx context.Context, userID, targetKey string) (*models.FieldMapping, error) {
	var row Row
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_key = ?", userID, targetKey).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping for %s: %w", targetKey, err)
	}

	columns := make(map[string]string)
	if err := json.Unmarshal([]byte(row.Columns), &columns); err != nil {
		return nil, fmt.Errorf("corrupt mapping row for %s: %w", targetKey, err)
	}

	return &models.FieldMapping{
		ContentType:     catalog.ContentType(row.ContentType),
		StrategyVersion: row.StrategyVersion,
		UpdatedAt:       row.UpdatedAt,
		Columns:         columns,
	}, nil
}

// Save upserts the mapping for a (user, target) pair.
func (s *Store) Save(ctx context.Context, userID, targetKey string, m *models.FieldMapping) error {
	columns, err := json.Marshal(m.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode mapping columns: %w", err)
	}

	row := Row{
		UserID:          userID,
		TargetKey:       targetKey,
		ContentType:     string(m.ContentType),
		StrategyVersion: m.StrategyVersion,
		Columns:         string(columns),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content_type", "strategy_version", "columns", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save mapping for %s: %w", targetKey, err)
	}
	return nil
}

// Delete removes the persisted mapping. Used only on explicit user reset.
func (s *Store) Delete(ctx context.Context, userID, targetKey string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_key = ?", userID, targetKey).
		Delete(&Row{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete mapping for %s: %w", targetKey, err)
	}
	return nil
}
