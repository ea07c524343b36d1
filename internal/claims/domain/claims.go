// Package domain defines the claims model for role-based authorization.
// Claims arrive already verified by an external token verifier; this module
// only inspects them, it never parses or validates token signatures.
package domain

import (
	"time"
)

// Claims is the verified claim set extracted from an authentication token.
type Claims struct {
	// Subject is the authenticated subject the claims describe.
	Subject string
	// Issuer identifies who issued the claims.
	Issuer string
	// IssuedAt is the UTC timestamp the claims were issued.
	IssuedAt time.Time
	// Audiences lists the intended audiences.
	Audiences []string
	// Role is the role claim used for authorization, empty when absent.
	Role string
}

// NewClaims creates a Claims value with a defensive copy of the audiences.
func NewClaims(subject, issuer string, issuedAt time.Time, audiences []string, role string) Claims {
	copied := make([]string, len(audiences))
	copy(copied, audiences)
	return Claims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  issuedAt,
		Audiences: copied,
		Role:      role,
	}
}

// HasRole reports whether the claims carry the given role.
// An empty role claim matches nothing.
func (c Claims) HasRole(role string) bool {
	return c.Role != "" && c.Role == role
}
