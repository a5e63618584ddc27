package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"service-crm/internal/utils"
)

const oidcStateCookie = "crm_oidc_state"

// OIDCLoginHandler redirects the browser to the identity provider.
func (c *CRMHandlers) OIDCLoginHandler(w http.ResponseWriter, r *http.Request) {
	if c.OIDC == nil {
		utils.RespondError(w, http.StatusNotFound, "OIDC login is not enabled")
		return
	}
	state, err := utils.GenerateOIDCState()
	if err != nil {
		c.Log.Error("Failed to generate OIDC state: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oidcStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, c.OIDC.AuthCodeURL(state), http.StatusFound)
}

// OIDCCallbackHandler completes the sign-in, finds or creates the user by
// e-mail and hands a session token to the web UI.
func (c *CRMHandlers) OIDCCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if c.OIDC == nil {
		utils.RespondError(w, http.StatusNotFound, "OIDC login is not enabled")
		return
	}
	q := r.URL.Query()
	cookie, err := r.Cookie(oidcStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		utils.RespondError(w, http.StatusBadRequest, "invalid OIDC state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oidcStateCookie, Value: "", Path: "/", MaxAge: -1})

	ctx := r.Context()
	identity, err := c.OIDC.Exchange(ctx, q.Get("code"))
	if err != nil {
		c.Log.Warn("OIDC exchange failed: %v", err)
		utils.RespondError(w, http.StatusUnauthorized, "OIDC authentication failed")
		return
	}

	user, err := c.Store.FindOrCreateUserByEmail(ctx, identity.Email)
	if err != nil {
		c.respondStoreError(w, err, "User not found")
		return
	}
	token, _, err := c.Tokens.Generate(user.ID)
	if err != nil {
		c.Log.Error("Error generating JWT: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	if err := c.TokenStore.SaveIDToken(user.ID, identity.RawIDToken, identity.Expiry); err != nil {
		c.Log.Warn("Failed to save ID token of user %d: %v", user.ID, err)
	}

	redirectURL := strings.TrimRight(c.WebUiUrl, "/") + "/oidc/callback?token=" + url.QueryEscape(token)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}
