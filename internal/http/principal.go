package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
)

// Trusted headers set by the fronting authenticator. keyguard never
// authenticates end users itself; it trusts the identity the proxy resolved.
const (
	RemoteUserHeader   = "X-Remote-User"
	RemoteGroupsHeader = "X-Remote-Groups"
)

// principalContextKey is the gin context key holding the resolved principal.
const principalContextKey = "keyguard/principal"

// PrincipalMiddleware resolves the caller's principal from the trusted
// identity headers. Requests without a remote user are rejected: every
// guarded route requires an authenticated caller.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(RemoteUserHeader))
		if name == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication is required",
			})
			c.Abort()
			return
		}

		var groups []string
		if raw := c.GetHeader(RemoteGroupsHeader); raw != "" {
			for _, group := range strings.Split(raw, ",") {
				if trimmed := strings.TrimSpace(group); trimmed != "" {
					groups = append(groups, trimmed)
				}
			}
		}

		c.Set(principalContextKey, aclDomain.NewPrincipal(name, groups))
		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from the request context.
func GetPrincipal(c *gin.Context) (aclDomain.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return aclDomain.Principal{}, false
	}
	principal, ok := value.(aclDomain.Principal)
	return principal, ok
}
