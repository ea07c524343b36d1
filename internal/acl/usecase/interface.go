// Package usecase orchestrates policy loading and access evaluation.
// The use case bridges the persisted rule set and the in-memory snapshot the
// decision engine evaluates against.
package usecase

import (
	"context"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
)

// PolicyRepository defines the interface for rule set persistence.
// Rule sets move wholesale: the full set is listed or replaced, never edited
// row by row.
type PolicyRepository interface {
	ListAll(ctx context.Context) ([]aclDomain.Rule, error)
	ReplaceAll(ctx context.Context, rules []aclDomain.Rule) error
}

// PolicyUseCase defines the interface for policy management and access
// evaluation business logic.
type PolicyUseCase interface {
	// Reload pulls the persisted rule set and swaps it in as the active snapshot.
	Reload(ctx context.Context) error
	// Replace persists a new rule set and swaps it in as the active snapshot.
	Replace(ctx context.Context, rules []aclDomain.Rule) error
	// Evaluate decides whether the principal may perform the operation
	// against the active snapshot. Evaluation fails closed.
	Evaluate(ctx context.Context, principal aclDomain.Principal, op aclDomain.Operation) aclDomain.Decision
}
