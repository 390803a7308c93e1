// Package store is the SQLite implementation of social.Store.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"

	"minisocial/internal/social"
)

//go:embed schema.sql
var schema string

// Store persists users, posts, stories, likes, saved posts and messages.
type Store struct {
	db *sql.DB
}

var _ social.Store = (*Store)(nil)

// Open connects to the SQLite database at path and creates missing tables.
// A single connection is kept so that write transactions are serialized.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, wrap("open", err)
	}
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return wrap("migrate", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// wrap translates driver errors into the social error taxonomy.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return social.ErrNotFound
	}
	return &social.StoreError{Op: op, Err: pkgerrors.WithStack(err)}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// isForeignKeyViolation reports a write that referenced a missing row.
func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return wrap(op, tx.Commit())
}

// Timestamps are stored as Unix nanoseconds.
func stamp(t time.Time) int64 { return t.UnixNano() }

func fromStamp(ts int64) time.Time { return time.Unix(0, ts) }

type scanner interface {
	Scan(dest ...any) error
}
