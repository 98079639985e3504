// Package store persists regattas, boats, races and results through bun and
// implements the replace-all result write used by race capture.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidDiscards   = errors.New("discard count must not be negative")
	ErrFinishBeforeStart = errors.New("finish time is before start time")
	ErrInvalidStatus     = errors.New("unknown regatta status")
)

// Store wraps the database handle shared by all repositories.
type Store struct {
	db  *bun.DB
	log *zap.Logger
}

// New returns a Store over db.
func New(db *bun.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle.
func (s *Store) DB() *bun.DB { return s.db }

// inTx runs fn in a transaction and commits when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation matches the duplicate-key errors of postgres, mysql and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint failed")
}
