package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
	oauthService "github.com/allisson/keyguard/internal/oauth/service"
)

// grantUseCase implements the GrantUseCase interface.
type grantUseCase struct {
	clientUseCase     ClientUseCase
	tokenStore        TokenStore
	credentialService oauthService.CredentialService
	codeTTL           time.Duration
	tokenTTL          time.Duration
	logger            *slog.Logger
}

// IssueCode issues a single-use authorization code.
// The redirect URI is resolved against the client's registration: an omitted
// URI is only acceptable when the client registered exactly one.
func (g *grantUseCase) IssueCode(
	ctx context.Context,
	input IssueCodeInput,
) (string, time.Time, error) {
	client, err := g.clientUseCase.Get(ctx, input.ClientID)
	if err != nil {
		return "", time.Time{}, err
	}

	redirectURI := input.RedirectURI
	if redirectURI == "" {
		if len(client.RedirectURIs) != 1 {
			return "", time.Time{}, oauthDomain.ErrInvalidRedirect
		}
		redirectURI = client.RedirectURIs[0]
	} else if !client.AllowsRedirectURI(redirectURI) {
		return "", time.Time{}, oauthDomain.ErrInvalidRedirect
	}

	if input.Scope != "" && !client.AllowsScope(strings.Fields(input.Scope)) {
		return "", time.Time{}, oauthDomain.ErrInvalidScope
	}

	plainCode, codeHash, err := g.credentialService.GenerateCredential()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	code := &oauthDomain.AuthorizationCode{
		CodeHash:    codeHash,
		ClientID:    client.ID,
		Subject:     input.Subject,
		Scope:       input.Scope,
		RedirectURI: redirectURI,
		ExpiresAt:   now.Add(g.codeTTL),
		CreatedAt:   now,
	}

	if err := g.tokenStore.SaveCode(ctx, code); err != nil {
		return "", time.Time{}, err
	}

	g.logger.Info("authorization code issued",
		slog.String("client_id", client.ID),
		slog.String("subject", input.Subject),
	)

	return plainCode, code.ExpiresAt, nil
}

// Exchange consumes an authorization code and issues an access token.
//
// The code is consumed before the binding and expiry checks, so a failed
// exchange still burns it: replaying a code after any exchange attempt,
// successful or not, yields ErrCodeUsed. A failed exchange never saves a
// token.
func (g *grantUseCase) Exchange(ctx context.Context, input ExchangeInput) (*TokenGrant, error) {
	client, err := g.clientUseCase.Authenticate(ctx, input.ClientID, input.ClientSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	codeHash := g.credentialService.HashCredential(input.Code)

	code, err := g.tokenStore.ConsumeCode(ctx, codeHash, now)
	if err != nil {
		return nil, err
	}

	if code.ClientID != client.ID {
		return nil, oauthDomain.ErrCodeClientMismatch
	}
	if code.RedirectURI != input.RedirectURI {
		return nil, oauthDomain.ErrInvalidRedirect
	}
	if code.Expired(now) {
		return nil, oauthDomain.ErrCodeExpired
	}

	plainToken, tokenHash, err := g.credentialService.GenerateCredential()
	if err != nil {
		return nil, err
	}

	token := &oauthDomain.AccessToken{
		TokenHash: tokenHash,
		ClientID:  client.ID,
		Subject:   code.Subject,
		Scope:     code.Scope,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.tokenTTL),
	}

	if err := g.tokenStore.SaveToken(ctx, token); err != nil {
		return nil, err
	}

	g.logger.Info("access token issued",
		slog.String("client_id", client.ID),
		slog.String("subject", code.Subject),
	)

	return &TokenGrant{
		AccessToken: plainToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(g.tokenTTL.Seconds()),
		Scope:       code.Scope,
	}, nil
}

// Validate checks a bearer token and returns its info.
// Not-found, revoked, and expired all collapse into ErrInvalidToken so the
// caller-visible behavior never reveals which one applied.
func (g *grantUseCase) Validate(
	ctx context.Context,
	plainToken string,
) (*oauthDomain.TokenInfo, error) {
	tokenHash := g.credentialService.HashCredential(plainToken)

	token, err := g.tokenStore.GetToken(ctx, tokenHash)
	if err != nil {
		g.logger.Debug("token validation failed", slog.String("reason", "not found"))
		return nil, oauthDomain.ErrInvalidToken
	}

	if token.RevokedAt != nil {
		g.logger.Debug("token validation failed",
			slog.String("reason", "revoked"),
			slog.String("client_id", token.ClientID),
		)
		return nil, oauthDomain.ErrInvalidToken
	}

	if token.Expired(time.Now().UTC()) {
		g.logger.Debug("token validation failed",
			slog.String("reason", "expired"),
			slog.String("client_id", token.ClientID),
		)
		return nil, oauthDomain.ErrInvalidToken
	}

	return &oauthDomain.TokenInfo{
		ClientID:  token.ClientID,
		Subject:   token.Subject,
		Scope:     token.Scope,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Revoke marks a token revoked and reports its prior state.
func (g *grantUseCase) Revoke(
	ctx context.Context,
	plainToken string,
) (oauthDomain.RevokeResult, error) {
	tokenHash := g.credentialService.HashCredential(plainToken)

	result, err := g.tokenStore.RevokeToken(ctx, tokenHash, time.Now().UTC())
	if err != nil {
		return "", err
	}

	g.logger.Info("token revocation", slog.String("result", string(result)))
	return result, nil
}

// CleanExpired removes expired codes and tokens.
func (g *grantUseCase) CleanExpired(ctx context.Context) (int64, error) {
	removed, err := g.tokenStore.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	g.logger.Info("expired grants removed", slog.Int64("count", removed))
	return removed, nil
}

// NewGrantUseCase creates a new grant use case instance.
func NewGrantUseCase(
	clientUseCase ClientUseCase,
	tokenStore TokenStore,
	credentialService oauthService.CredentialService,
	codeTTL time.Duration,
	tokenTTL time.Duration,
	logger *slog.Logger,
) GrantUseCase {
	return &grantUseCase{
		clientUseCase:     clientUseCase,
		tokenStore:        tokenStore,
		credentialService: credentialService,
		codeTTL:           codeTTL,
		tokenTTL:          tokenTTL,
		logger:            logger,
	}
}
