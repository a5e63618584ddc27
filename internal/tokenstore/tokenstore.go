package tokenstore

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/buntdb"
)

// ErrNotFound is returned when no id token is stored for a user.
var ErrNotFound = errors.New("token not found")

// TokenStore keeps short-lived session state: revoked session token ids and
// provider id tokens from OIDC logins. Every entry expires with its token.
type TokenStore interface {
	Revoke(tokenID string, expiresAt time.Time) error
	IsRevoked(tokenID string) (bool, error)
	RevokeUser(userID int64, until time.Time) error
	IsUserRevoked(userID int64) (bool, error)
	SaveIDToken(userID int64, token string, expiresAt time.Time) error
	GetIDToken(userID int64) (string, error)
	DeleteIDToken(userID int64) error
	Close() error
}

type BuntDBTokenStore struct {
	DB *buntdb.DB
}

// NewBuntDBTokenStore opens the buntDB database at the given path (":memory:" for tests).
func NewBuntDBTokenStore(path string) (*BuntDBTokenStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	return &BuntDBTokenStore{DB: db}, nil
}

func userKey(userID int64) string {
	return "id_token:" + strconv.FormatInt(userID, 10)
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

func revokedUserKey(userID int64) string {
	return "revoked_user:" + strconv.FormatInt(userID, 10)
}

func (s *BuntDBTokenStore) exists(key string) (bool, error) {
	err := s.DB.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BuntDBTokenStore) setWithExpiry(key, value string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt).Round(time.Second)
	if ttl <= 0 {
		return nil
	}
	return s.DB.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, &buntdb.SetOptions{
			Expires: true,
			TTL:     ttl,
		})
		return err
	})
}

// Revoke marks a session token id as unusable until it would have expired anyway.
func (s *BuntDBTokenStore) Revoke(tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	return s.setWithExpiry(revokedKey(tokenID), strconv.FormatInt(expiresAt.Unix(), 10), expiresAt)
}

// IsRevoked reports whether tokenID was revoked.
func (s *BuntDBTokenStore) IsRevoked(tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	revoked, err := s.exists(revokedKey(tokenID))
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// RevokeUser rejects every session token of a deleted account. until must be
// at least the expiry of the newest token issued to the user.
func (s *BuntDBTokenStore) RevokeUser(userID int64, until time.Time) error {
	return s.setWithExpiry(revokedUserKey(userID), strconv.FormatInt(until.Unix(), 10), until)
}

// IsUserRevoked reports whether all tokens of userID were revoked.
func (s *BuntDBTokenStore) IsUserRevoked(userID int64) (bool, error) {
	revoked, err := s.exists(revokedUserKey(userID))
	if err != nil {
		return false, fmt.Errorf("check revoked user: %w", err)
	}
	return revoked, nil
}

// SaveIDToken stores the token with an expiry.
func (s *BuntDBTokenStore) SaveIDToken(userID int64, token string, expiresAt time.Time) error {
	return s.setWithExpiry(userKey(userID), token, expiresAt)
}

// GetIDToken retrieves the token by user ID.
func (s *BuntDBTokenStore) GetIDToken(userID int64) (string, error) {
	var token string
	err := s.DB.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(userKey(userID))
		if err != nil {
			return err
		}
		token = val
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read id token: %w", err)
	}
	return token, nil
}

// DeleteIDToken removes a stored token.
func (s *BuntDBTokenStore) DeleteIDToken(userID int64) error {
	return s.DB.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(userKey(userID))
		if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return nil
	})
}

func (s *BuntDBTokenStore) Close() error {
	return s.DB.Close()
}
