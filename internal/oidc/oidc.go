// Package oidc implements the optional OpenID Connect sign-in.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"service-crm/internal/config"
)

var ErrMissingEmail = errors.New("id token has no email claim")

// Provider holds the discovered issuer, the token verifier and the OAuth2
// client configuration.
type Provider struct {
	Verifier  *gooidc.IDTokenVerifier
	OAuth     *oauth2.Config
	LogoutURL string
}

// Identity is what a successful callback yields.
type Identity struct {
	Email      string
	Name       string
	RawIDToken string
	Expiry     time.Time
}

// New discovers the issuer and builds the client. It performs network I/O.
func New(ctx context.Context, cfg config.OIDCConfig) (*Provider, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC issuer: %w", err)
	}
	return &Provider{
		Verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		OAuth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
		},
		LogoutURL: cfg.LogoutURL,
	}, nil
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.OAuth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified identity.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in token response")
	}
	idToken, err := p.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id token claims: %w", err)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrMissingEmail
	}
	return &Identity{
		Email:      claims.Email,
		Name:       claims.Name,
		RawIDToken: rawIDToken,
		Expiry:     idToken.Expiry,
	}, nil
}

// EndSessionURL builds the provider logout redirect. It returns "" when no
// logout endpoint is configured.
func (p *Provider) EndSessionURL(idTokenHint, postLogoutRedirect string) string {
	if p.LogoutURL == "" {
		return ""
	}
	q := url.Values{}
	if idTokenHint != "" {
		q.Set("id_token_hint", idTokenHint)
	}
	if postLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	sep := "?"
	if strings.Contains(p.LogoutURL, "?") {
		sep = "&"
	}
	return p.LogoutURL + sep + q.Encode()
}
