package mapping

import (
	"context"
	"testing"

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

func TestStoreLoad(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "target_key", "content_type", "strategy_version", "columns"}).
		AddRow(1, "user-1", "bascnApp:tblBooks", "books", 1, `{"subjectId":"fldA","title":"fldB"}`)
	mock.ExpectQuery("SELECT \\* FROM `field_mappings`").
		WithArgs("user-1", "bascnApp:tblBooks", 1).
		WillReturnRows(rows)

	m, err := store.Load(context.Background(), "user-1", "bascnApp:tblBooks")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, catalog.ContentTypeBooks, m.ContentType)
	assert.Equal(t, 1, m.StrategyVersion)
	assert.Equal(t, map[string]string{"subjectId": "fldA", "title": "fldB"}, m.Columns)
}

func TestStoreLoadNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery("SELECT \\* FROM `field_mappings`").
		WithArgs("user-1", "bascnApp:tblBooks", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	m, err := store.Load(context.Background(), "user-1", "bascnApp:tblBooks")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestStoreLoadCorruptColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "target_key", "content_type", "strategy_version", "columns"}).
		AddRow(1, "user-1", "bascnApp:tblBooks", "books", 1, "{not json")
	mock.ExpectQuery("SELECT \\* FROM `field_mappings`").
		WithArgs("user-1", "bascnApp:tblBooks", 1).
		WillReturnRows(rows)

	_, err := store.Load(context.Background(), "user-1", "bascnApp:tblBooks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt mapping row")
}

func TestStoreSaveUpserts(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `field_mappings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	m := &models.FieldMapping{
		ContentType:     catalog.ContentTypeBooks,
		StrategyVersion: StrategyVersion,
		Columns:         map[string]string{"subjectId": "fldA"},
	}
	require.NoError(t, store.Save(context.Background(), "user-1", "bascnApp:tblBooks", m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `field_mappings`").
		WithArgs("user-1", "bascnApp:tblBooks").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Delete(context.Background(), "user-1", "bascnApp:tblBooks"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
