package handlers

import (
	"errors"
	"net/http"
	"strings"

	"service-crm/internal/auth"
	"service-crm/internal/events"
	"service-crm/internal/middleware"
	"service-crm/internal/models"
	"service-crm/internal/store"
	"service-crm/internal/utils"
)

const invalidCredentials = "invalid credentials"

// LogoutResponse confirms a logout. EndSessionURL is set for OIDC users
// when the provider exposes a logout endpoint.
type LogoutResponse struct {
	Message       string `json:"message"`
	EndSessionURL string `json:"endSessionUrl,omitempty"`
}

func (c *CRMHandlers) readCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var creds models.Credentials
	if !c.decode(w, r, &creds) {
		return creds, false
	}
	creds.Email = store.NormalizeEmail(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return creds, false
	}
	return creds, true
}

// RegisterUser creates an account.
func (c *CRMHandlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	creds, ok := c.readCredentials(w, r)
	if !ok {
		return
	}
	hash, err := c.Hasher.Hash(creds.Password)
	if err != nil {
		c.Log.Warn("Error hashing password: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}
	user, err := c.Store.CreateUser(r.Context(), creds.Email, hash)
	if err != nil {
		c.respondStoreError(w, err, "User not found")
		return
	}
	c.publish(r.Context(), events.UserRegistered, user.ID, user.ID, nil)
	utils.RespondJSON(w, http.StatusCreated, user)
}

// LoginUser checks credentials and issues a session token.
func (c *CRMHandlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	creds, ok := c.readCredentials(w, r)
	if !ok {
		return
	}
	user, err := c.Store.UserByEmail(r.Context(), creds.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusBadRequest, invalidCredentials)
		return
	}
	if err != nil {
		c.respondStoreError(w, err, invalidCredentials)
		return
	}
	if err := c.Hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			c.Log.Debug("Password check failed for user %d: %v", user.ID, err)
		}
		utils.RespondError(w, http.StatusBadRequest, invalidCredentials)
		return
	}
	token, _, err := c.Tokens.Generate(user.ID)
	if err != nil {
		c.Log.Error("Error generating JWT: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token})
}

// LogoutUser revokes the presented token until it would have expired.
func (c *CRMHandlers) LogoutUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	tokenID, expiresAt, ok := middleware.TokenID(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Token has no id")
		return
	}
	if err := c.TokenStore.Revoke(tokenID, expiresAt); err != nil {
		c.Log.Error("Failed to revoke token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := LogoutResponse{Message: "Logged out"}
	if c.OIDC != nil {
		idToken, err := c.TokenStore.GetIDToken(userID)
		if err == nil {
			resp.EndSessionURL = c.OIDC.EndSessionURL(idToken, strings.TrimRight(c.WebUiUrl, "/")+"/login")
			if err := c.TokenStore.DeleteIDToken(userID); err != nil {
				c.Log.Warn("Failed to drop id token of user %d: %v", userID, err)
			}
		}
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
