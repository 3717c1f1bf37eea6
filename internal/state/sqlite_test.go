package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/token"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".csmstyle", "state.db")

	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Migrate())

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Close())

	// reopening keeps the schema and is a no-op migration
	reopened, err := OpenAndMigrate(path)
	require.NoError(t, err)
	assert.NoError(t, reopened.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore()

	_, err := store.AddIgnored(ctx, "a.py", 1, "CSM1 x")
	assert.ErrorContains(t, err, "database not opened")
	_, err = store.ListIgnored(ctx, "")
	assert.ErrorContains(t, err, "database not opened")
	assert.ErrorContains(t, store.RemoveIgnored(ctx, "id"), "database not opened")
	_, err = store.ClearIgnored(ctx, "")
	assert.ErrorContains(t, err, "database not opened")
	assert.ErrorContains(t, store.Migrate(), "database not opened")
	_, err = store.GetMigrationVersion()
	assert.ErrorContains(t, err, "database not opened")
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_IgnoredLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first, err := store.AddIgnored(ctx, "a.py", 4, "CSM1 top-level function/class should be preceded by two blank lines")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	again, err := store.AddIgnored(ctx, "a.py", 4, "CSM1 top-level function/class should be preceded by two blank lines")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = store.AddIgnored(ctx, "a.py", 9, "CSM5 mixed")
	require.NoError(t, err)
	_, err = store.AddIgnored(ctx, "b.py", 1, "CSM4 dunder")
	require.NoError(t, err)

	all, err := store.ListIgnored(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.py", all[0].Path)
	assert.Equal(t, 4, all[0].Line)
	assert.Equal(t, "b.py", all[2].Path)

	onlyA, err := store.ListIgnored(ctx, "a.py")
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	require.NoError(t, store.RemoveIgnored(ctx, first.ID))
	assert.ErrorIs(t, store.RemoveIgnored(ctx, first.ID), ErrNotFound)

	n, err := store.ClearIgnored(ctx, "b.py")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.ClearIgnored(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	empty, err := store.ListIgnored(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_IgnoreSet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	v, err := store.AddIgnored(ctx, "a.py", 1, "CSM1 one")
	require.NoError(t, err)
	assert.Equal(t, "a.py:1:CSM1 one", v.Key())

	set, err := store.IgnoreSet(ctx, "a.py")
	require.NoError(t, err)

	diags := []lint.Diagnostic{
		{Path: "a.py", Pos: token.Position{Line: 1, Column: 1}, Message: "CSM1 one", Severity: core.SeverityWarning},
		{Path: "a.py", Pos: token.Position{Line: 2, Column: 1}, Message: "CSM1 one", Severity: core.SeverityWarning},
	}
	filtered := set.Filter(diags)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Pos.Line)
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "path", "line", "message", "created_at"}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(store *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "add fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO ignored_violations").WillReturnError(assert.AnError)
			},
			run: func(store *SQLiteStore) error {
				_, err := store.AddIgnored(ctx, "a.py", 1, "CSM1 x")
				return err
			},
			errMsg: "failed to add ignored violation",
		},
		{
			name: "add conflict returns existing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO ignored_violations").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT id, path, line, message, created_at FROM ignored_violations").
					WithArgs("a.py", 1, "CSM1 x").
					WillReturnRows(sqlmock.NewRows(columns).AddRow("existing", "a.py", 1, "CSM1 x", time.Now()))
			},
			run: func(store *SQLiteStore) error {
				v, err := store.AddIgnored(ctx, "a.py", 1, "CSM1 x")
				if err == nil && v.ID != "existing" {
					return assert.AnError
				}
				return err
			},
		},
		{
			name: "list fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, path, line, message, created_at FROM ignored_violations").
					WillReturnError(assert.AnError)
			},
			run: func(store *SQLiteStore) error {
				_, err := store.ListIgnored(ctx, "")
				return err
			},
			errMsg: "failed to list ignored violations",
		},
		{
			name: "list scan fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, path, line, message, created_at FROM ignored_violations").
					WithArgs("a.py").
					WillReturnRows(sqlmock.NewRows(columns).AddRow("id", "a.py", "not-a-number", "m", time.Now()))
			},
			run: func(store *SQLiteStore) error {
				_, err := store.IgnoreSet(ctx, "a.py")
				return err
			},
			errMsg: "failed to scan ignored violation",
		},
		{
			name: "remove fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM ignored_violations").WillReturnError(assert.AnError)
			},
			run: func(store *SQLiteStore) error {
				return store.RemoveIgnored(ctx, "id")
			},
			errMsg: "failed to remove ignored violation",
		},
		{
			name: "clear fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM ignored_violations").WillReturnError(assert.AnError)
			},
			run: func(store *SQLiteStore) error {
				_, err := store.ClearIgnored(ctx, "")
				return err
			},
			errMsg: "failed to clear ignored violations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)
			err = tt.run(NewSQLiteStoreWithDB(db))
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
