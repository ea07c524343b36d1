package usecase

import (
	"context"
	"log/slog"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	aclService "github.com/allisson/keyguard/internal/acl/service"
	"github.com/allisson/keyguard/internal/database"
)

// policyUseCase implements the PolicyUseCase interface.
type policyUseCase struct {
	txManager database.TxManager
	repo      PolicyRepository
	store     *aclService.PolicyStore
	engine    *aclService.DecisionEngine
	logger    *slog.Logger
}

// Reload pulls the persisted rule set and swaps it in as the active snapshot.
func (p *policyUseCase) Reload(ctx context.Context) error {
	rules, err := p.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	if err := p.store.Replace(rules); err != nil {
		return err
	}

	p.logger.Info("policy snapshot reloaded", slog.Int("rules", len(rules)))
	return nil
}

// Replace persists a new rule set and swaps it in as the active snapshot.
// Duplicate subjects are rejected before persisting so the database never
// holds a set the snapshot would refuse.
func (p *policyUseCase) Replace(ctx context.Context, rules []aclDomain.Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if _, dup := seen[rule.Subject]; dup {
			return aclDomain.ErrDuplicateSubject
		}
		seen[rule.Subject] = struct{}{}
	}

	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return p.repo.ReplaceAll(txCtx, rules)
	})
	if err != nil {
		return err
	}

	if err := p.store.Replace(rules); err != nil {
		return err
	}

	p.logger.Info("policy rule set replaced", slog.Int("rules", len(rules)))
	return nil
}

// Evaluate decides whether the principal may perform the operation.
// Denial reasons are logged at debug level only; callers see a bare Decision.
func (p *policyUseCase) Evaluate(
	ctx context.Context,
	principal aclDomain.Principal,
	op aclDomain.Operation,
) aclDomain.Decision {
	decision := p.engine.Evaluate(principal, op)

	if !decision.Allowed() {
		p.logger.Debug("access denied",
			slog.String("principal", principal.Name),
			slog.String("operation", op.String()),
			slog.String("reason", decision.Reason()),
		)
	}

	return decision
}

// NewPolicyUseCase creates a new policy use case instance.
func NewPolicyUseCase(
	txManager database.TxManager,
	repo PolicyRepository,
	store *aclService.PolicyStore,
	logger *slog.Logger,
) PolicyUseCase {
	return &policyUseCase{
		txManager: txManager,
		repo:      repo,
		store:     store,
		engine:    aclService.NewDecisionEngine(store),
		logger:    logger,
	}
}
