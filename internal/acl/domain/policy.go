package domain

import (
	"time"
)

// Principal identifies an authenticated caller: a name plus the groups the
// identity source resolved for it, in resolution order. Group order matters
// only for evaluation order, not precedence; any grant allows.
type Principal struct {
	// Name is the authenticated principal name (e.g., "bob").
	Name string
	// Groups are the principal's group memberships in resolution order.
	Groups []string
}

// NewPrincipal creates a Principal with a defensive copy of the group list,
// keeping the value immutable from the caller's perspective.
func NewPrincipal(name string, groups []string) Principal {
	copied := make([]string, len(groups))
	copy(copied, groups)
	return Principal{Name: name, Groups: copied}
}

// Rule grants a subject (principal name or group name) a set of operations.
type Rule struct {
	// Subject is the principal or group name the rule applies to.
	Subject string
	// Operations is the set of operations granted to the subject.
	Operations []Operation
	// CreatedAt is the UTC timestamp when this rule was stored.
	CreatedAt time.Time
}

// Grants reports whether the rule grants the given operation.
// There is no wildcard: a superuser rule lists every operation explicitly.
func (r Rule) Grants(op Operation) bool {
	for _, granted := range r.Operations {
		if granted == op {
			return true
		}
	}
	return false
}

// Decision is the outcome of an access evaluation. The reason is for logs and
// metrics only; callers surface a uniform denial regardless of cause.
type Decision struct {
	allowed bool
	reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{allowed: true}
}

// Deny returns a denying decision with an internal reason.
func Deny(reason string) Decision {
	return Decision{allowed: false, reason: reason}
}

// Allowed reports whether access was granted.
func (d Decision) Allowed() bool {
	return d.allowed
}

// Reason returns the internal denial reason, empty for allowing decisions.
func (d Decision) Reason() string {
	return d.reason
}
