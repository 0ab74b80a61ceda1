package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the display-relevant subset of the token payload.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeClaims extracts the token payload without verifying the signature.
// It returns nil for anything malformed. The result is for display and
// early expiry detection only; authorization always uses the
// server-assigned role, never these claims.
func DecodeClaims(token string) *Claims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	var c Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return nil
	}
	return &c
}
