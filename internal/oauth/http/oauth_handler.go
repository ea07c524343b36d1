// Package http provides the OAuth2 endpoints: authorize, token, and revoke.
// The token endpoint speaks the RFC 6749 error vocabulary; every grant
// failure surfaces as the same invalid_grant so callers learn nothing about
// why a code was refused.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/allisson/keyguard/internal/http"
	"github.com/allisson/keyguard/internal/httputil"
	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
	"github.com/allisson/keyguard/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
	customValidation "github.com/allisson/keyguard/internal/validation"
)

// OAuthHandler handles HTTP requests for the authorization-code grant flow.
type OAuthHandler struct {
	grantUseCase oauthUseCase.GrantUseCase
	logger       *slog.Logger
}

// NewOAuthHandler creates a new OAuth handler with required dependencies.
func NewOAuthHandler(grantUseCase oauthUseCase.GrantUseCase, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		grantUseCase: grantUseCase,
		logger:       logger,
	}
}

// AuthorizeHandler issues an authorization code for the authenticated subject.
// POST /v1/oauth/authorize - Requires a resolved principal.
// Returns 201 Created with the plain code and its expiry.
func (h *OAuthHandler) AuthorizeHandler(c *gin.Context) {
	principal, ok := sharedHTTP.GetPrincipal(c)
	if !ok {
		httputil.HandleErrorGin(c, oauthDomain.ErrClientAuthFailed, h.logger)
		return
	}

	var req dto.AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	code, expiresAt, err := h.grantUseCase.IssueCode(c.Request.Context(), oauthUseCase.IssueCodeInput{
		ClientID:    req.ClientID,
		Subject:     principal.Name,
		Scope:       req.Scope,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthorizeResponse{
		Code:      code,
		ExpiresAt: expiresAt,
	})
}

// TokenHandler exchanges an authorization code for an access token.
// POST /v1/oauth/token
// Errors use the RFC 6749 vocabulary: invalid_request for malformed input,
// invalid_client for failed client authentication, and invalid_grant for
// every code-related failure regardless of cause.
func (h *OAuthHandler) TokenHandler(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.OAuthErrorResponse{Error: "invalid_request"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.OAuthErrorResponse{Error: "invalid_request"})
		return
	}

	grant, err := h.grantUseCase.Exchange(c.Request.Context(), oauthUseCase.ExchangeInput{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Code:         req.Code,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		h.handleTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToTokenResponse(grant))
}

// handleTokenError maps exchange failures to RFC 6749 error responses.
func (h *OAuthHandler) handleTokenError(c *gin.Context, err error) {
	h.logger.Debug("token exchange failed", slog.Any("error", err))

	switch {
	case errors.Is(err, oauthDomain.ErrUnknownClient),
		errors.Is(err, oauthDomain.ErrClientAuthFailed):
		c.JSON(http.StatusUnauthorized, dto.OAuthErrorResponse{Error: "invalid_client"})

	case errors.Is(err, oauthDomain.ErrCodeNotFound),
		errors.Is(err, oauthDomain.ErrCodeUsed),
		errors.Is(err, oauthDomain.ErrCodeExpired),
		errors.Is(err, oauthDomain.ErrCodeClientMismatch),
		errors.Is(err, oauthDomain.ErrInvalidRedirect),
		errors.Is(err, oauthDomain.ErrInvalidScope):
		c.JSON(http.StatusBadRequest, dto.OAuthErrorResponse{Error: "invalid_grant"})

	default:
		c.JSON(http.StatusInternalServerError, dto.OAuthErrorResponse{Error: "server_error"})
	}
}

// RevokeHandler revokes an access token.
// POST /v1/oauth/revoke
// Always returns 200: revocation is idempotent and the response reports the
// token's prior state instead of failing.
func (h *OAuthHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.grantUseCase.Revoke(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{Result: string(result)})
}
