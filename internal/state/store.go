// Package state persists user decisions between csmstyle runs using SQLite.
// It currently tracks ignored violations.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// DefaultPath is the state database location relative to the project root.
const DefaultPath = ".csmstyle/state.db"

// IgnoredViolation is a violation the user chose to suppress.
// It matches a diagnostic by path, line and full message.
type IgnoredViolation struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Line      int       `json:"line"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the lint.IgnoreKey of the violation.
func (v IgnoredViolation) Key() string {
	return lint.IgnoreKey(v.Path, v.Line, v.Message)
}

// Store persists ignored violations.
type Store interface {
	AddIgnored(ctx context.Context, path string, line int, message string) (*IgnoredViolation, error)
	ListIgnored(ctx context.Context, path string) ([]IgnoredViolation, error)
	RemoveIgnored(ctx context.Context, id string) error
	ClearIgnored(ctx context.Context, path string) (int64, error)
	IgnoreSet(ctx context.Context, path string) (lint.IgnoreSet, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
