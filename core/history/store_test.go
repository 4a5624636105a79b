package history

import (
	"regexp"
	"testing"

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

func TestSave(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `merge_runs`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record := &Record{
		SessionID:     "session-1",
		BaseName:      "base.v1",
		SourceName:    "source.v1",
		TargetName:    "target.v1",
		ActionCount:   5,
		ConflictCount: 1,
		Applied:       true,
	}
	require.NoError(t, store.Save(record))
	assert.NotZero(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `merge_runs`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.Save(&Record{SessionID: "session-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save merge run")
}

func TestRecent(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	rows := sqlmock.NewRows([]string{"id", "session_id", "base_name", "source_name", "target_name", "action_count", "conflict_count", "applied"}).
		AddRow(2, "session-2", "base.v1", "source.v2", "target.v1", 3, 0, true).
		AddRow(1, "session-1", "base.v1", "source.v1", "target.v1", 5, 1, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `merge_runs` ORDER BY created_at DESC LIMIT ?")).
		WithArgs(10).
		WillReturnRows(rows)

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "session-2", records[0].SessionID)
	assert.False(t, records[1].Applied)
}

func TestRecent_DefaultLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `merge_runs` ORDER BY created_at DESC LIMIT ?")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	records, err := store.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
