package domain

import (
	"github.com/allisson/keyguard/internal/errors"
)

// Claims-specific error definitions.
var (
	// ErrInvalidClaims indicates the claims do not satisfy the required role.
	ErrInvalidClaims = errors.Wrap(errors.ErrForbidden, "invalid claims")

	// ErrMissingClaims indicates no verified claims were present on the request.
	ErrMissingClaims = errors.Wrap(errors.ErrUnauthorized, "missing claims")
)
