package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
)

// tokenInfoContextKey is the gin context key holding validated token info.
const tokenInfoContextKey = "keyguard/token_info"

// GetTokenInfo retrieves validated token info from the request context.
func GetTokenInfo(c *gin.Context) (*oauthDomain.TokenInfo, bool) {
	value, exists := c.Get(tokenInfoContextKey)
	if !exists {
		return nil, false
	}
	info, ok := value.(*oauthDomain.TokenInfo)
	return info, ok
}

// BearerTokenMiddleware validates the Authorization bearer token for
// protected routes. Every rejection looks identical to the caller: a 401
// with invalid_token, whether the token is missing, unknown, revoked, or
// expired.
func BearerTokenMiddleware(grantUseCase oauthUseCase.GrantUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c)
			return
		}

		info, err := grantUseCase.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("bearer token rejected", slog.Any("error", err))
			unauthorized(c)
			return
		}

		c.Set(tokenInfoContextKey, info)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
	c.Abort()
}
