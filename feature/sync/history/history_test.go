package history

import (
	"context"
	"testing"
	"time"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestRecordPersistsSummary(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_runs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	target := models.TargetConfig{
		Creds:       feishu.Credentials{AppID: "cli_app"},
		AppToken:    "bascnApp",
		TableID:     "tblBooks",
		ContentType: catalog.ContentTypeBooks,
	}
	summary := &models.RunSummary{
		RunID:      "run-1",
		Total:      12,
		Created:    5,
		Updated:    6,
		Failed:     1,
		Errors:     []string{"batch 0: boom"},
		Success:    false,
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}

	require.NoError(t, store.Record(context.Background(), "user-1", target, summary))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "user_id", "target_key", "content_type", "total", "created", "updated", "deleted", "failed", "success"}).
		AddRow(2, "run-2", "user-1", "bascnApp:tblBooks", "books", 3, 3, 0, 0, 0, true).
		AddRow(1, "run-1", "user-1", "bascnApp:tblBooks", "books", 5, 2, 3, 0, 0, true)
	mock.ExpectQuery("SELECT \\* FROM `sync_runs`").
		WithArgs("user-1", "bascnApp:tblBooks", 10).
		WillReturnRows(rows)

	runs, err := store.Recent(context.Background(), "user-1", "bascnApp:tblBooks", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.True(t, runs[0].Success)
}
