// Package store persists contacts, leads, tasks, communications and users.
// Every operation is scoped to the owning user; rows of other users behave
// as if they did not exist.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("invalid reference")
	ErrEmailTaken       = errors.New("email already registered")
)

// ValidationError carries a message safe to show to API clients.
// It matches ErrValidation or ErrInvalidReference through errors.Is.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(format string, args ...any) error {
	return &ValidationError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func badReference(message string) error {
	return &ValidationError{Kind: ErrInvalidReference, Message: message}
}

type Store struct {
	DB  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// WithClock replaces the time source used for created_at and completed_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Now returns the store clock in UTC. All timestamps are written in UTC so
// that SQLite text comparisons order correctly.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

func (s *Store) rebind(query string) string {
	return s.DB.Rebind(query)
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.DB.QueryRowxContext(ctx, s.rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execOwned runs an UPDATE/DELETE scoped by id and user_id and maps zero
// affected rows to ErrNotFound.
func (s *Store) execOwned(ctx context.Context, query string, args ...any) error {
	result, err := s.DB.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// optionalText trims s and treats a blank value as absent.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// escapeLike escapes LIKE metacharacters for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
