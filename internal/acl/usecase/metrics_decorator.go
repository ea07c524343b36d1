package usecase

import (
	"context"
	"time"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	"github.com/allisson/keyguard/internal/metrics"
)

// policyUseCaseWithMetrics decorates PolicyUseCase with metrics instrumentation.
type policyUseCaseWithMetrics struct {
	next    PolicyUseCase
	metrics metrics.BusinessMetrics
}

// NewPolicyUseCaseWithMetrics wraps a PolicyUseCase with metrics recording.
func NewPolicyUseCaseWithMetrics(useCase PolicyUseCase, m metrics.BusinessMetrics) PolicyUseCase {
	return &policyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Reload records metrics for policy reload operations.
func (p *policyUseCaseWithMetrics) Reload(ctx context.Context) error {
	start := time.Now()
	err := p.next.Reload(ctx)

	status := "success"
	if err != nil {
		status = metrics.StatusError
	}

	p.metrics.RecordOperation(ctx, "acl", "policy_reload", status)
	p.metrics.RecordDuration(ctx, "acl", "policy_reload", time.Since(start), status)

	return err
}

// Replace records metrics for policy replacement operations.
func (p *policyUseCaseWithMetrics) Replace(ctx context.Context, rules []aclDomain.Rule) error {
	start := time.Now()
	err := p.next.Replace(ctx, rules)

	status := "success"
	if err != nil {
		status = metrics.StatusError
	}

	p.metrics.RecordOperation(ctx, "acl", "policy_replace", status)
	p.metrics.RecordDuration(ctx, "acl", "policy_replace", time.Since(start), status)

	return err
}

// Evaluate records each access decision with its allow/deny outcome.
func (p *policyUseCaseWithMetrics) Evaluate(
	ctx context.Context,
	principal aclDomain.Principal,
	op aclDomain.Operation,
) aclDomain.Decision {
	start := time.Now()
	decision := p.next.Evaluate(ctx, principal, op)

	status := metrics.StatusAllow
	if !decision.Allowed() {
		status = metrics.StatusDeny
	}

	p.metrics.RecordOperation(ctx, "acl", "evaluate", status)
	p.metrics.RecordDuration(ctx, "acl", "evaluate", time.Since(start), status)

	return decision
}
