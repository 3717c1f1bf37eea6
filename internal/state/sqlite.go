package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// ErrNotFound is returned when an ignored violation does not exist.
var ErrNotFound = errors.New("ignored violation not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewSQLiteStoreWithDB wraps an existing connection. The schema is
// expected to be migrated already.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens a connection to the SQLite database, creating parent
// directories as needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// every in-memory connection is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenAndMigrate opens the database at path and applies migrations.
func OpenAndMigrate(path string) (*SQLiteStore, error) {
	s := NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path passed to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// AddIgnored records a violation as ignored. Adding the same violation
// twice returns the existing record.
func (s *SQLiteStore) AddIgnored(ctx context.Context, path string, line int, message string) (*IgnoredViolation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	v := &IgnoredViolation{
		ID:        generateID(),
		Path:      path,
		Line:      line,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO ignored_violations (id, path, line, message, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (path, line, message) DO NOTHING`,
		v.ID, v.Path, v.Line, v.Message, v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add ignored violation: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		return v, nil
	}

	existing := &IgnoredViolation{}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, path, line, message, created_at FROM ignored_violations
		 WHERE path = ? AND line = ? AND message = ?`,
		path, line, message,
	).Scan(&existing.ID, &existing.Path, &existing.Line, &existing.Message, &existing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get ignored violation: %w", err)
	}
	return existing, nil
}

// ListIgnored returns the ignored violations for path, or for every file
// when path is empty, ordered by path and line.
func (s *SQLiteStore) ListIgnored(ctx context.Context, path string) ([]IgnoredViolation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, path, line, message, created_at FROM ignored_violations`
	var args []any
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY path, line, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ignored violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []IgnoredViolation
	for rows.Next() {
		var v IgnoredViolation
		if err := rows.Scan(&v.ID, &v.Path, &v.Line, &v.Message, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ignored violation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list ignored violations: %w", err)
	}
	return out, nil
}

// RemoveIgnored deletes one ignored violation by ID.
func (s *SQLiteStore) RemoveIgnored(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM ignored_violations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove ignored violation: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ClearIgnored deletes the ignored violations for path, or all of them
// when path is empty. It returns the number of records removed.
func (s *SQLiteStore) ClearIgnored(ctx context.Context, path string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	query := `DELETE FROM ignored_violations`
	var args []any
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear ignored violations: %w", err)
	}

	n, _ := result.RowsAffected()
	return n, nil
}

// IgnoreSet loads the ignored violations for path as a lint.IgnoreSet.
func (s *SQLiteStore) IgnoreSet(ctx context.Context, path string) (lint.IgnoreSet, error) {
	ignored, err := s.ListIgnored(ctx, path)
	if err != nil {
		return nil, err
	}

	set := make(lint.IgnoreSet, len(ignored))
	for _, v := range ignored {
		set.Add(v.Path, v.Line, v.Message)
	}
	return set, nil
}
