// Package service implements role-based authorization over verified claims.
package service

import (
	"fmt"
	"net/http"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	claimsDomain "github.com/allisson/keyguard/internal/claims/domain"
)

// RoleRule binds an HTTP method and resource to a required role.
// An empty Role means the method is open to any verified caller.
type RoleRule struct {
	// Method is the canonical HTTP verb (GET, POST, PUT, DELETE).
	Method string
	// Resource is the resource path the rule protects.
	Resource string
	// Role is the role required to invoke the method, empty for none.
	Role string
}

// RoleAuthorizer checks verified claims against a method-to-role rule table.
type RoleAuthorizer struct {
	rules []RoleRule
}

// NewRoleAuthorizer creates a RoleAuthorizer with the given rule table.
func NewRoleAuthorizer(rules []RoleRule) *RoleAuthorizer {
	copied := make([]RoleRule, len(rules))
	copy(copied, rules)
	return &RoleAuthorizer{rules: copied}
}

// Authorize decides whether the claims satisfy the required role.
// An unset required role allows any verified caller; an absent or mismatched
// role claim denies.
func (a *RoleAuthorizer) Authorize(claims claimsDomain.Claims, requiredRole string) aclDomain.Decision {
	if requiredRole == "" {
		return aclDomain.Allow()
	}
	if claims.Role == "" {
		return aclDomain.Deny("claims carry no role")
	}
	if !claims.HasRole(requiredRole) {
		return aclDomain.Deny(fmt.Sprintf("role %q does not satisfy required role %q", claims.Role, requiredRole))
	}
	return aclDomain.Allow()
}

// AuthorizeRequest resolves the rule for the verb and resource and checks the
// claims against it. The verb is canonicalized first so aliased verbs resolve
// to the same rule as the verb they alias: a HEAD request is checked against
// the GET rule, never against a missing HEAD rule.
func (a *RoleAuthorizer) AuthorizeRequest(
	verb, resource string,
	claims claimsDomain.Claims,
) aclDomain.Decision {
	canonical := CanonicalVerb(verb)

	for _, rule := range a.rules {
		if rule.Method == canonical && rule.Resource == resource {
			return a.Authorize(claims, rule.Role)
		}
	}

	// No rule for the method: fail closed
	return aclDomain.Deny(fmt.Sprintf("no rule for %s %s", canonical, resource))
}

// CanonicalVerb maps aliased HTTP verbs onto the verb whose rule governs
// them. HEAD is a read like GET and must be held to the same role.
func CanonicalVerb(verb string) string {
	if verb == http.MethodHead {
		return http.MethodGet
	}
	return verb
}
