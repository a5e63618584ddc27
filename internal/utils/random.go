package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateOIDCState returns a URL-safe random string with 256 bits of
// entropy, used as the OIDC state parameter.
func GenerateOIDCState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
