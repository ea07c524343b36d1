// Package dto provides data transfer objects for the OAuth2 endpoints.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/keyguard/internal/validation"
)

// AuthorizeRequest contains the parameters for issuing an authorization code.
// The subject comes from the fronting authenticator, not the request body.
type AuthorizeRequest struct {
	ClientID    string `json:"client_id"`
	Scope       string `json:"scope"`
	RedirectURI string `json:"redirect_uri"`
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Scope, validation.By(validateScopeList)),
		validation.Field(&r.RedirectURI,
			validation.When(r.RedirectURI != "", customValidation.RedirectURI),
		),
	)
}

// TokenRequest contains the parameters for the code-for-token exchange.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

// Validate checks if the token request is valid.
func (r *TokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType,
			validation.Required,
			validation.In("authorization_code"),
		),
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ClientSecret, validation.Required),
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
		validation.Field(&r.RedirectURI,
			validation.When(r.RedirectURI != "", customValidation.RedirectURI),
		),
	)
}

// RevokeRequest contains the parameters for revoking an access token.
type RevokeRequest struct {
	Token string `json:"token"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// validateScopeList validates a space-separated scope list.
func validateScopeList(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	for _, scope := range strings.Fields(s) {
		if err := customValidation.Scope.Validate(scope); err != nil {
			return err
		}
	}
	return nil
}
