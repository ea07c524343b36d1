package dto

import (
	"time"

	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
)

// AuthorizeResponse is the output of a successful code issuance.
type AuthorizeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse is the output of a successful exchange (RFC 6749 §5.1).
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// MapGrantToTokenResponse converts a token grant to its response form.
func MapGrantToTokenResponse(grant *oauthUseCase.TokenGrant) TokenResponse {
	return TokenResponse{
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		ExpiresIn:   grant.ExpiresIn,
		Scope:       grant.Scope,
	}
}

// RevokeResponse is the output of a revocation request.
// Revocation always succeeds; the result reports the token's prior state.
type RevokeResponse struct {
	Result string `json:"result"`
}

// OAuthErrorResponse is the RFC 6749 §5.2 error form used by the token endpoint.
type OAuthErrorResponse struct {
	Error string `json:"error"`
}
