package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"service-crm/internal/models"
)

// externalPasswordHash marks accounts created through OIDC. It is not a
// valid bcrypt hash, so password login never succeeds for them.
const externalPasswordHash = "!external"

const userColumns = `id, email, password_hash, created_at`

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return models.User{}, invalid("email is required")
	}
	id, err := s.insertReturningID(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`,
		email, passwordHash, s.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.UserByID(ctx, id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), NormalizeEmail(email))
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// FindOrCreateUserByEmail returns the account for an externally verified
// address, creating a password-less one on first sign-in.
func (s *Store) FindOrCreateUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}
	u, err = s.CreateUser(ctx, email, externalPasswordHash)
	if errors.Is(err, ErrEmailTaken) {
		// Lost a race with a concurrent sign-in.
		return s.UserByEmail(ctx, email)
	}
	return u, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

// DeleteUser removes the account and, through cascading keys, every record
// it owns.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
