package handlers

import (
	"net/http"
	"time"

	"service-crm/internal/middleware"
	"service-crm/internal/models"
	"service-crm/internal/utils"
)

// GetUserInfo returns the authenticated account.
func (c *CRMHandlers) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	user, err := c.Store.UserByID(r.Context(), userID)
	if err != nil {
		c.respondStoreError(w, err, "User not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser removes the authenticated account with all of its data and
// revokes every session token issued to it.
func (c *CRMHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Store.DeleteUser(r.Context(), userID); err != nil {
		c.respondStoreError(w, err, "User not found")
		return
	}
	// Every token of the account, not just this one, must stop working.
	// Buntdb expiry runs on the wall clock.
	if err := c.TokenStore.RevokeUser(userID, time.Now().Add(c.Tokens.TTL())); err != nil {
		c.Log.Error("Failed to revoke tokens of deleted user %d: %v", userID, err)
	}
	if tokenID, exp, ok := middleware.TokenID(r.Context()); ok {
		if err := c.TokenStore.Revoke(tokenID, exp); err != nil {
			c.Log.Warn("Failed to revoke token of deleted user %d: %v", userID, err)
		}
	}
	utils.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Account deleted"})
}
