package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"service-crm/internal/auth"
	"service-crm/internal/logger"
)

type revokedSet struct {
	tokens map[string]bool
	users  map[int64]bool
}

func (s revokedSet) IsRevoked(id string) (bool, error) { return s.tokens[id], nil }

func (s revokedSet) IsUserRevoked(id int64) (bool, error) { return s.users[id], nil }

type failingRevocations struct{}

func (failingRevocations) IsRevoked(string) (bool, error) { return false, errors.New("disk gone") }

func (failingRevocations) IsUserRevoked(int64) (bool, error) { return false, errors.New("disk gone") }

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	valid, claims, err := tokens.Generate(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	revokedToken, revokedClaims, _ := tokens.Generate(7)
	expired, _, _ := auth.NewTokenManager("test-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Generate(7)
	foreign, _, _ := auth.NewTokenManager("other-secret", time.Hour).Generate(7)
	deletedUser, _, _ := tokens.Generate(9)

	revocations := revokedSet{
		tokens: map[string]bool{revokedClaims.ID: true},
		users:  map[int64]bool{9: true},
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusForbidden},
		{"foreign signature", "Bearer " + foreign, http.StatusForbidden},
		{"revoked token", "Bearer " + revokedToken, http.StatusForbidden},
		{"deleted user", "Bearer " + deletedUser, http.StatusForbidden},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser int64
			var gotJTI string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserID(r.Context())
				gotJTI, _, _ = TokenID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := Auth(tokens, revocations, logger.NewNop())(next)

			r := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusOK && (gotUser != 7 || gotJTI != claims.ID) {
				t.Fatalf("context carried user %d jti %q", gotUser, gotJTI)
			}
		})
	}
}

func TestAuthRevocationLookupFailure(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, _, _ := tokens.Generate(1)
	h := Auth(tokens, failingRevocations{}, logger.NewNop())(http.NotFoundHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoggingAssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	h := Logging(zap.New(core), node)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/api", nil))
	id := rec.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated request id")
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != id || fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/api/health/api" {
		t.Fatalf("unexpected fields %v", fields)
	}

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "upstream-1")
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-1" {
		t.Fatalf("expected the caller's request id to be kept, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over TLS")
	}
}
