package service

import (
	"fmt"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
)

// DecisionEngine evaluates access requests against the active policy snapshot.
// Evaluation is pure and fails closed: no matching grant means deny.
type DecisionEngine struct {
	store *PolicyStore
}

// NewDecisionEngine creates a DecisionEngine backed by the given store.
func NewDecisionEngine(store *PolicyStore) *DecisionEngine {
	return &DecisionEngine{store: store}
}

// Evaluate decides whether the principal may perform the operation.
//
// The principal's own rule is checked first, then each group in the order the
// identity source listed them. The first grant allows; there is no explicit
// deny rule, so rules that don't grant the operation are simply skipped.
// Invalid operations and empty principal names deny without consulting rules.
func (e *DecisionEngine) Evaluate(
	principal aclDomain.Principal,
	op aclDomain.Operation,
) aclDomain.Decision {
	if principal.Name == "" {
		return aclDomain.Deny("empty principal name")
	}
	if !op.Valid() {
		return aclDomain.Deny(fmt.Sprintf("unknown operation %q", op))
	}

	if rule, ok := e.store.Lookup(principal.Name); ok && rule.Grants(op) {
		return aclDomain.Allow()
	}

	for _, group := range principal.Groups {
		if rule, ok := e.store.Lookup(group); ok && rule.Grants(op) {
			return aclDomain.Allow()
		}
	}

	return aclDomain.Deny(fmt.Sprintf("no grant for %q on %s", principal.Name, op))
}
