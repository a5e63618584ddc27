package oidc

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthCodeURLCarriesState(t *testing.T) {
	p := &Provider{OAuth: &oauth2.Config{
		ClientID:    "crm",
		RedirectURL: "https://crm.example.com/api/auth/oidc/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://idp.example.com/auth"},
		Scopes:      []string{"openid", "email"},
	}}
	u, err := url.Parse(p.AuthCodeURL("xyz"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "xyz" || q.Get("client_id") != "crm" || q.Get("scope") != "openid email" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestEndSessionURL(t *testing.T) {
	tests := []struct {
		name      string
		logoutURL string
		want      string
	}{
		{"not configured", "", ""},
		{"plain", "https://idp.example.com/logout", "https://idp.example.com/logout?"},
		{"with query", "https://idp.example.com/logout?realm=crm", "https://idp.example.com/logout?realm=crm&"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Provider{LogoutURL: tt.logoutURL}
			got := p.EndSessionURL("tok", "https://crm.example.com/login")
			if tt.want == "" {
				if got != "" {
					t.Fatalf("expected no URL, got %q", got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("got %q, want prefix %q", got, tt.want)
			}
			if !strings.Contains(got, "id_token_hint=tok") || !strings.Contains(got, "post_logout_redirect_uri=https%3A%2F%2Fcrm.example.com%2Flogin") {
				t.Fatalf("missing parameters in %q", got)
			}
		})
	}
}
