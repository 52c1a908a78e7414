// Package auth decodes the opaque bearer credential the catalog service
// issues. Decoding is purely structural: the client never holds the signing
// secret, so signatures are not verified here and every real authorization
// decision stays with the server.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/libctl/internal/core/domain"
)

// Claims are the structured fields embedded in a bearer token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Decode parses token into Claims without verifying the signature. It fails
// with an error wrapping domain.ErrTokenInvalid when the token is malformed
// or its claims cannot be parsed. An expired but well-formed token decodes
// successfully; expiry is a separate check (Claims.ExpiredAt).
func Decode(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	return claims, nil
}

// ExpiredAt reports whether the token's expiry instant is at or before now.
// A token without an exp claim is treated as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}
