package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, claims, err := m.Generate(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}

	parsed, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.UserID != 42 {
		t.Fatalf("user id = %d, want 42", parsed.UserID)
	}
	if parsed.ID != claims.ID {
		t.Fatalf("token id mismatch: %q vs %q", parsed.ID, claims.ID)
	}

	_, second, _ := m.Generate(42)
	if second.ID == claims.ID {
		t.Fatalf("token ids must be unique")
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Generate(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewTokenManager("other-secret", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature failure, got %v", err)
	}

	if _, err := m.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected malformed token failure, got %v", err)
	}

	future := NewTokenManager("secret", time.Hour).WithClock(func() time.Time {
		return time.Now().Add(2 * time.Hour)
	})
	if _, err := future.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token failure, got %v", err)
	}
}

func TestGenerateWithoutSecret(t *testing.T) {
	if _, _, err := NewTokenManager("", time.Hour).Generate(1); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("hash must not equal the plain password")
	}
	if err := h.Compare(hash, "hunter2"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}
