// Package http provides role-enforcement middleware for routes guarded by
// verified claims. Token verification itself happens upstream; by the time
// these middlewares run, claims on the context are trusted.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	claimsDomain "github.com/allisson/keyguard/internal/claims/domain"
	claimsService "github.com/allisson/keyguard/internal/claims/service"
	"github.com/allisson/keyguard/internal/httputil"
	"github.com/allisson/keyguard/internal/metrics"
)

// claimsContextKey is the gin context key holding verified claims.
const claimsContextKey = "keyguard/claims"

// SetClaims stores verified claims on the request context.
// Called by the verifier adapter middleware after successful verification.
func SetClaims(c *gin.Context, claims claimsDomain.Claims) {
	c.Set(claimsContextKey, claims)
}

// GetClaims retrieves verified claims from the request context.
func GetClaims(c *gin.Context) (claimsDomain.Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return claimsDomain.Claims{}, false
	}
	claims, ok := value.(claimsDomain.Claims)
	return claims, ok
}

// RequireRole enforces the authorizer's rule table for every request passing
// through it. Requests without claims are rejected as unauthenticated;
// requests whose claims fail the resolved rule are rejected as forbidden.
// The resource checked is the route path, and the verb is canonicalized by
// the authorizer so HEAD cannot slip past a GET rule.
func RequireRole(authorizer *claimsService.RoleAuthorizer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			httputil.HandleErrorGin(c, claimsDomain.ErrMissingClaims, logger)
			c.Abort()
			return
		}

		decision := authorizer.AuthorizeRequest(c.Request.Method, c.FullPath(), claims)
		if !decision.Allowed() {
			logger.Debug("role check denied",
				slog.String("subject", claims.Subject),
				slog.String("method", c.Request.Method),
				slog.String("resource", c.FullPath()),
				slog.String("reason", decision.Reason()),
			)
			httputil.HandleErrorGin(c, claimsDomain.ErrInvalidClaims, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRoleWithMetrics is RequireRole with role decisions recorded as
// business metrics. Missing claims and failed rules both count as denials.
func RequireRoleWithMetrics(
	authorizer *claimsService.RoleAuthorizer,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) gin.HandlerFunc {
	requireRole := RequireRole(authorizer, logger)

	return func(c *gin.Context) {
		start := time.Now()

		requireRole(c)

		status := metrics.StatusAllow
		if c.IsAborted() {
			status = metrics.StatusDeny
		}

		ctx := c.Request.Context()
		businessMetrics.RecordOperation(ctx, "claims", "authorize_request", status)
		businessMetrics.RecordDuration(ctx, "claims", "authorize_request", time.Since(start), status)
	}
}
