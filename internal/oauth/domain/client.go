// Package domain defines the core domain models for the OAuth2
// authorization-code grant: registered clients, single-use authorization
// codes, and revocable access tokens. Codes and tokens are persisted only as
// SHA-256 hashes; the plain values exist solely in transit.
package domain

import (
	"time"
)

// Client represents a registered OAuth2 client application.
type Client struct {
	// ID is the caller-chosen client identifier, unique across the registry.
	ID string
	// SecretHash is the Argon2id hash of the client secret.
	SecretHash string `json:"-"`
	// Name is a human-readable client name.
	Name string
	// RedirectURIs lists the exact redirect URIs registered for the client.
	RedirectURIs []string
	// AllowedScopes lists the scopes the client may request.
	AllowedScopes []string
	// CreatedAt is the UTC timestamp when the client was registered.
	CreatedAt time.Time
}

// AllowsRedirectURI reports whether the URI is registered for the client.
// Matching is exact; no prefix or wildcard matching.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// AllowsScope reports whether every requested scope is allowed for the client.
func (c *Client) AllowsScope(scopes []string) bool {
	for _, requested := range scopes {
		allowed := false
		for _, scope := range c.AllowedScopes {
			if scope == requested {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}
