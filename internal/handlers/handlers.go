package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"service-crm/internal/auth"
	"service-crm/internal/events"
	"service-crm/internal/logger"
	"service-crm/internal/middleware"
	"service-crm/internal/oidc"
	"service-crm/internal/store"
	"service-crm/internal/summary"
	"service-crm/internal/tokenstore"
	"service-crm/internal/utils"
)

// CRMHandlers serves every HTTP endpoint. Fields are set once at startup.
type CRMHandlers struct {
	Store      *store.Store
	Summary    *summary.Aggregator
	Tokens     *auth.TokenManager
	Hasher     auth.PasswordHasher
	TokenStore tokenstore.TokenStore
	Events     events.Publisher
	OIDC       *oidc.Provider // nil when OIDC is disabled
	Log        logger.Logger
	Loc        *time.Location
	WebUiUrl   string
	Now        func() time.Time
}

func (c *CRMHandlers) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CRMHandlers) location() *time.Location {
	if c.Loc != nil {
		return c.Loc
	}
	return time.UTC
}

// requireUser returns the authenticated user id or answers 401.
func (c *CRMHandlers) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	return userID, true
}

// pathID parses {id} or answers 400.
func (c *CRMHandlers) pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := utils.PathID(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// decode reads the JSON body or answers 400.
func (c *CRMHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		c.Log.Debug("Rejected request body: %v", err)
		utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// respondStoreError maps store errors onto status codes. Unexpected errors
// are logged and answered generically.
func (c *CRMHandlers) respondStoreError(w http.ResponseWriter, err error, notFound string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrEmailTaken):
		utils.RespondError(w, http.StatusConflict, "Email already registered")
	default:
		c.Log.Error("Store operation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// publish emits a domain event. Failures are logged only.
func (c *CRMHandlers) publish(ctx context.Context, eventType string, ownerID, entityID int64, data any) {
	if c.Events == nil {
		return
	}
	if err := c.Events.Publish(ctx, events.New(eventType, ownerID, entityID, data)); err != nil {
		c.Log.Warn("Failed to publish %s for %d: %v", eventType, entityID, err)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeField parses an optional timestamp. Values without a zone are
// read in loc; a blank value means absent.
func parseTimeField(raw *string, loc *time.Location, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s %q", field, s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
