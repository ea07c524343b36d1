package domain

import (
	"github.com/allisson/keyguard/internal/errors"
)

// OAuth2 grant error definitions.
var (
	// ErrUnknownClient indicates the client ID is not registered.
	ErrUnknownClient = errors.Wrap(errors.ErrNotFound, "unknown client")

	// ErrClientAuthFailed indicates the client secret did not match.
	ErrClientAuthFailed = errors.Wrap(errors.ErrUnauthorized, "client authentication failed")

	// ErrDuplicateClient indicates the client ID is already registered.
	ErrDuplicateClient = errors.Wrap(errors.ErrConflict, "client already registered")

	// ErrInvalidRedirect indicates the redirect URI is not registered for the client
	// or does not match the URI the code was bound to.
	ErrInvalidRedirect = errors.Wrap(errors.ErrInvalidInput, "invalid redirect uri")

	// ErrInvalidScope indicates a requested scope is not allowed for the client.
	ErrInvalidScope = errors.Wrap(errors.ErrInvalidInput, "invalid scope")

	// ErrCodeNotFound indicates no authorization code matches.
	ErrCodeNotFound = errors.Wrap(errors.ErrNotFound, "authorization code not found")

	// ErrCodeUsed indicates the authorization code was already consumed.
	ErrCodeUsed = errors.Wrap(errors.ErrUnauthorized, "authorization code already used")

	// ErrCodeExpired indicates the authorization code's lifetime has passed.
	ErrCodeExpired = errors.Wrap(errors.ErrUnauthorized, "authorization code expired")

	// ErrCodeClientMismatch indicates the code was issued to a different client.
	ErrCodeClientMismatch = errors.Wrap(errors.ErrUnauthorized, "authorization code client mismatch")

	// ErrDuplicateCode indicates a code hash collision on save.
	ErrDuplicateCode = errors.Wrap(errors.ErrConflict, "authorization code already exists")

	// ErrTokenNotFound indicates no access token matches.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "access token not found")

	// ErrTokenRevoked indicates the access token was revoked.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "access token revoked")

	// ErrTokenExpired indicates the access token's lifetime has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "access token expired")

	// ErrDuplicateToken indicates a token hash collision on save.
	ErrDuplicateToken = errors.Wrap(errors.ErrConflict, "access token already exists")

	// ErrInvalidToken is the uniform validation failure surfaced to callers.
	// Validation collapses not-found, revoked, and expired into this error so
	// the response never reveals why a token was refused.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")
)
