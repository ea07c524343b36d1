package domain

import (
	"time"
)

// AuthorizationCode is a single-use grant binding a subject's approval to a
// client, scope, and redirect URI. The plain code never persists; only its
// SHA-256 hash does.
type AuthorizationCode struct {
	// CodeHash is the SHA-256 hex hash of the plain code.
	CodeHash string
	// ClientID is the client the code was issued to.
	ClientID string
	// Subject is the resource owner who approved the grant.
	Subject string
	// Scope is the space-separated approved scope.
	Scope string
	// RedirectURI is the redirect URI the code is bound to.
	RedirectURI string
	// ExpiresAt is the UTC timestamp after which the code cannot be exchanged.
	ExpiresAt time.Time
	// UsedAt marks when the code was consumed (nil while unused).
	UsedAt *time.Time
	// CreatedAt is the UTC timestamp when the code was issued.
	CreatedAt time.Time
}

// Expired reports whether the code's lifetime has passed at the given instant.
func (a *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// AccessToken is a bearer token issued by a successful code exchange.
// Only the SHA-256 hash of the token is ever stored.
type AccessToken struct {
	// TokenHash is the SHA-256 hex hash of the plain token.
	TokenHash string
	// ClientID is the client the token was issued to.
	ClientID string
	// Subject is the resource owner the token acts for.
	Subject string
	// Scope is the space-separated granted scope.
	Scope string
	// IssuedAt is the UTC timestamp the token was issued.
	IssuedAt time.Time
	// ExpiresAt is the UTC timestamp after which the token is invalid.
	ExpiresAt time.Time
	// RevokedAt marks when the token was revoked (nil while active).
	RevokedAt *time.Time
}

// Expired reports whether the token's lifetime has passed at the given instant.
func (a *AccessToken) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// TokenInfo is the validation output for an accepted token.
type TokenInfo struct {
	ClientID  string
	Subject   string
	Scope     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevokeResult reports the prior state of a token at revocation time.
// Revocation is idempotent: every outcome is a success to the caller.
type RevokeResult string

const (
	// RevokeResultRevoked means the token was active and is now revoked.
	RevokeResultRevoked RevokeResult = "revoked"
	// RevokeResultAlreadyRevoked means the token had been revoked before.
	RevokeResultAlreadyRevoked RevokeResult = "already_revoked"
	// RevokeResultNotFound means no such token exists.
	RevokeResultNotFound RevokeResult = "not_found"
)
