package tokenstore

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BuntDBTokenStore {
	t.Helper()
	s, err := NewBuntDBTokenStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRevokeAndCheck(t *testing.T) {
	s := newTestStore(t)

	revoked, err := s.IsRevoked("abc")
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked: %v %v", revoked, err)
	}

	if err := s.Revoke("abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = s.IsRevoked("abc")
	if err != nil || !revoked {
		t.Fatalf("expected token to be revoked: %v %v", revoked, err)
	}

	if err := s.Revoke("old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoking an expired token should be a no-op: %v", err)
	}
	if revoked, _ := s.IsRevoked("old"); revoked {
		t.Fatalf("already expired token should not be stored")
	}

	if err := s.Revoke("", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected empty token id to be rejected")
	}
}

func TestIDTokenLifecycle(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetIDToken(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveIDToken(1, "id-token", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetIDToken(1)
	if err != nil || got != "id-token" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if err := s.DeleteIDToken(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteIDToken(1); err != nil {
		t.Fatalf("deleting twice should succeed: %v", err)
	}
	if _, err := s.GetIDToken(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRevokeUser(t *testing.T) {
	s := newTestStore(t)

	if revoked, err := s.IsUserRevoked(7); err != nil || revoked {
		t.Fatalf("fresh user should not be revoked: %v %v", revoked, err)
	}
	if err := s.RevokeUser(7, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke user: %v", err)
	}
	if revoked, err := s.IsUserRevoked(7); err != nil || !revoked {
		t.Fatalf("expected user 7 to be revoked: %v %v", revoked, err)
	}
	if revoked, _ := s.IsUserRevoked(8); revoked {
		t.Fatal("revoking user 7 must not affect user 8")
	}
	if revoked, _ := s.IsRevoked("7"); revoked {
		t.Fatal("user revocation leaked into token ids")
	}
}
