// Package auth mints and verifies the HS256 access tokens carried by
// signed-in shoppers.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is what the caller knows when minting a token. An empty
// JTI is replaced with a fresh UUID.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	JTI    string
}

type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claim checks.
func (c *AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token has no user")
	}
	if c.Subject != c.UserID.String() {
		return errors.New("token subject does not match user")
	}
	if c.ID == "" {
		return errors.New("token has no id")
	}
	return nil
}

var _ jwt.ClaimsValidator = (*AccessTokenClaims)(nil)
