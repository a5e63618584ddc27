package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"service-crm/internal/auth"
	"service-crm/internal/logger"
	"service-crm/internal/models"
	"service-crm/internal/utils"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RevocationChecker reports tokens revoked by a logout and users whose
// tokens were all revoked when the account was deleted.
type RevocationChecker interface {
	IsRevoked(tokenID string) (bool, error)
	IsUserRevoked(userID int64) (bool, error)
}

// Auth rejects requests without a valid bearer token. A missing or
// malformed header is 401; a token that fails verification or was revoked
// is 403. On success the user id, token id and expiry are put in the
// request context.
func Auth(tokens TokenParser, revocations RevocationChecker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Bearer token required")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(tokenString))
			if err != nil {
				utils.RespondError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			if revocations != nil {
				revoked, err := isRevoked(revocations, claims)
				if err != nil {
					log.Error("Failed to check token revocation: %v", err)
					utils.RespondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if revoked {
					utils.RespondError(w, http.StatusForbidden, "Token has been revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), models.UserIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, models.TokenIDContextKey, claims.ID)
			if claims.ExpiresAt != nil {
				ctx = context.WithValue(ctx, models.TokenExpContextKey, claims.ExpiresAt.Time)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isRevoked(revocations RevocationChecker, claims *auth.Claims) (bool, error) {
	if claims.ID != "" {
		revoked, err := revocations.IsRevoked(claims.ID)
		if err != nil || revoked {
			return revoked, err
		}
	}
	return revocations.IsUserRevoked(claims.UserID)
}

// UserID returns the authenticated user id stored by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(models.UserIDContextKey).(int64)
	return id, ok
}

// TokenID returns the id and expiry of the token that authenticated the request.
func TokenID(ctx context.Context) (string, time.Time, bool) {
	id, ok := ctx.Value(models.TokenIDContextKey).(string)
	if !ok || id == "" {
		return "", time.Time{}, false
	}
	exp, _ := ctx.Value(models.TokenExpContextKey).(time.Time)
	return id, exp, true
}
