// Package usecase implements the OAuth2 authorization-code grant flow:
// client registration and authentication, code issuance, the code-for-token
// exchange, token validation, and revocation.
package usecase

import (
	"context"
	"time"

	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
)

// ClientRepository defines the interface for client persistence.
type ClientRepository interface {
	CreateClient(ctx context.Context, client *oauthDomain.Client) error
	GetClient(ctx context.Context, clientID string) (*oauthDomain.Client, error)
}

// TokenStore defines the interface for authorization code and access token
// persistence. ConsumeCode and RevokeToken are atomic check-and-mark
// operations: implementations must guarantee at most one ConsumeCode call
// per code ever succeeds, regardless of concurrency.
type TokenStore interface {
	SaveCode(ctx context.Context, code *oauthDomain.AuthorizationCode) error
	ConsumeCode(ctx context.Context, codeHash string, usedAt time.Time) (*oauthDomain.AuthorizationCode, error)
	SaveToken(ctx context.Context, token *oauthDomain.AccessToken) error
	GetToken(ctx context.Context, tokenHash string) (*oauthDomain.AccessToken, error)
	RevokeToken(ctx context.Context, tokenHash string, revokedAt time.Time) (oauthDomain.RevokeResult, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RegisterClientInput carries the fields for registering a client.
type RegisterClientInput struct {
	ID            string
	Secret        string
	Name          string
	RedirectURIs  []string
	AllowedScopes []string
}

// ClientUseCase defines the interface for client registry business logic.
type ClientUseCase interface {
	// Register stores a new client with its secret hashed.
	Register(ctx context.Context, input RegisterClientInput) (*oauthDomain.Client, error)
	// Get retrieves a client by ID.
	Get(ctx context.Context, clientID string) (*oauthDomain.Client, error)
	// Authenticate verifies the client's secret and returns the client.
	Authenticate(ctx context.Context, clientID, plainSecret string) (*oauthDomain.Client, error)
}

// IssueCodeInput carries the fields for issuing an authorization code.
// Subject is the resource owner resolved by the external identity source.
type IssueCodeInput struct {
	ClientID    string
	Subject     string
	Scope       string
	RedirectURI string
}

// ExchangeInput carries the fields for exchanging a code for a token.
type ExchangeInput struct {
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// TokenGrant is the output of a successful exchange. AccessToken is the plain
// bearer token, returned exactly once and never stored.
type TokenGrant struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	Scope       string
}

// GrantUseCase defines the interface for the authorization-code grant flow.
type GrantUseCase interface {
	// IssueCode issues a single-use authorization code bound to the client,
	// subject, scope, and redirect URI. Returns the plain code and its expiry.
	IssueCode(ctx context.Context, input IssueCodeInput) (string, time.Time, error)
	// Exchange consumes a code and issues an access token. The code is
	// consumed before any other check, so a failed exchange still burns it
	// and at most one exchange per code ever succeeds.
	Exchange(ctx context.Context, input ExchangeInput) (*TokenGrant, error)
	// Validate checks a bearer token and returns its info. Every failure
	// surfaces as ErrInvalidToken; the specific reason is only logged.
	Validate(ctx context.Context, plainToken string) (*oauthDomain.TokenInfo, error)
	// Revoke marks a token revoked. Idempotent: reports the prior state and
	// never fails for repeated or unknown tokens.
	Revoke(ctx context.Context, plainToken string) (oauthDomain.RevokeResult, error)
	// CleanExpired removes expired codes and tokens.
	CleanExpired(ctx context.Context) (int64, error)
}
