package sqlstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"calendar-sync/core/database"
	"calendar-sync/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newSQLite(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	store := New(db, nil)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// setupMockDB creates a mock GORM DB for testing.
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

func record(eventID, signature string) reconcile.LedgerRecord {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return reconcile.LedgerRecord{
		PrimaryCalendarID:   "a@example.com",
		PrimaryEventID:      eventID,
		SecondaryCalendarID: "b@example.com",
		SecondaryEventID:    "copy-" + eventID,
		Summary:             "Standup",
		Start:               "2026-10-19T09:00:00Z",
		End:                 "2026-10-19T09:30:00Z",
		Signature:           signature,
		CreatedAt:           at,
		LastUpdated:         at,
		LastChecked:         at,
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.CheckSchema(ctx))
	require.NoError(t, store.BatchInsert(ctx, []reconcile.LedgerRecord{
		record("e1", "s1"), record("e2", "s2"), record("e3", "s3"),
	}))

	records, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "e1", records[0].PrimaryEventID)
	assert.Positive(t, records[0].RowID)
	assert.True(t, records[0].CreatedAt.Equal(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))

	changed := records[1]
	changed.Signature = "s2b"
	changed.SecondaryEventID = "copy-e2b"
	require.NoError(t, store.BatchUpdate(ctx, []reconcile.LedgerRecord{changed}))

	structuralID, err := store.StructuralID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.BatchDelete(ctx, structuralID,
		reconcile.DescendingRows([]int{records[0].RowID, records[2].RowID})))

	left, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "s2b", left[0].Signature)
	assert.Equal(t, "copy-e2b", left[0].SecondaryEventID)
	assert.Equal(t, changed.RowID, left[0].RowID)
}

func TestStore_InsertUpsertsOnPrimaryPair(t *testing.T) {
	store := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.BatchInsert(ctx, []reconcile.LedgerRecord{record("e1", "old")}))
	require.NoError(t, store.BatchInsert(ctx, []reconcile.LedgerRecord{record("e1", "new")}))

	records, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].Signature)
}

func TestStore_EmptyBatches(t *testing.T) {
	store := newSQLite(t)
	ctx := context.Background()

	assert.NoError(t, store.BatchInsert(ctx, nil))
	assert.NoError(t, store.BatchUpdate(ctx, nil))
	assert.NoError(t, store.BatchDelete(ctx, 0, nil))
}

func TestStore_UpdateRejectsMissingRowID(t *testing.T) {
	store := newSQLite(t)

	err := store.BatchUpdate(context.Background(), []reconcile.LedgerRecord{record("e1", "s")})
	assert.ErrorContains(t, err, "invalid row id 0")
}

func TestStore_CheckSchemaReportsMissingColumns(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE sync_ledger (id INTEGER PRIMARY KEY, primary_calendar_id TEXT, primary_event_id TEXT)").Error)

	err = New(db, nil).CheckSchema(context.Background())
	assert.ErrorContains(t, err, "missing columns: secondary_calendar_id")
}

func TestStore_LoadAllError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `sync_ledger` ORDER BY id")).
		WillReturnError(assert.AnError)

	_, err := New(db, nil).LoadAll(context.Background())
	assert.ErrorContains(t, err, "load ledger")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteUsesSingleStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `sync_ledger` WHERE id IN (?,?,?)")).
		WithArgs(7, 3, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := New(db, nil).BatchDelete(context.Background(), 0, []int{7, 3, 2})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sync_ledger` SET").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	rec := record("e1", "s")
	rec.RowID = 4
	err := New(db, nil).BatchUpdate(context.Background(), []reconcile.LedgerRecord{rec})
	assert.ErrorContains(t, err, "update 1 ledger rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}
