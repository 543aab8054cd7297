package model

import "github.com/golang-jwt/jwt/v5"

// TokenScope restricts which operations accept a token. It is a closed
// enumeration: every issued token carries exactly one of the values below.
type TokenScope string

const (
	ScopeAccess  TokenScope = "access"
	ScopeRefresh TokenScope = "refresh"
)

// AuthClaims is the claim schema for all tokens issued by this service.
// Subject carries the string-encoded user id, ID carries the jti used for
// individual revocation. Claims are immutable once issued.
type AuthClaims struct {
	Email string     `json:"email,omitempty"`
	Scope TokenScope `json:"scope"`
	jwt.RegisteredClaims
}
