package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyguard/internal/metrics"
	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
)

// grantUseCaseWithMetrics decorates GrantUseCase with metrics instrumentation.
type grantUseCaseWithMetrics struct {
	next    GrantUseCase
	metrics metrics.BusinessMetrics
}

// NewGrantUseCaseWithMetrics wraps a GrantUseCase with metrics recording.
func NewGrantUseCaseWithMetrics(useCase GrantUseCase, m metrics.BusinessMetrics) GrantUseCase {
	return &grantUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// IssueCode records metrics for code issuance.
func (g *grantUseCaseWithMetrics) IssueCode(
	ctx context.Context,
	input IssueCodeInput,
) (string, time.Time, error) {
	start := time.Now()
	code, expiresAt, err := g.next.IssueCode(ctx, input)

	status := metrics.StatusAllow
	if err != nil {
		status = metrics.StatusDeny
	}

	g.metrics.RecordOperation(ctx, "oauth", "issue_code", status)
	g.metrics.RecordDuration(ctx, "oauth", "issue_code", time.Since(start), status)

	return code, expiresAt, err
}

// Exchange records metrics for code exchanges.
func (g *grantUseCaseWithMetrics) Exchange(ctx context.Context, input ExchangeInput) (*TokenGrant, error) {
	start := time.Now()
	grant, err := g.next.Exchange(ctx, input)

	status := metrics.StatusAllow
	if err != nil {
		status = metrics.StatusDeny
	}

	g.metrics.RecordOperation(ctx, "oauth", "exchange", status)
	g.metrics.RecordDuration(ctx, "oauth", "exchange", time.Since(start), status)

	return grant, err
}

// Validate records metrics for token validations.
func (g *grantUseCaseWithMetrics) Validate(
	ctx context.Context,
	plainToken string,
) (*oauthDomain.TokenInfo, error) {
	start := time.Now()
	info, err := g.next.Validate(ctx, plainToken)

	status := metrics.StatusAllow
	if err != nil {
		status = metrics.StatusDeny
	}

	g.metrics.RecordOperation(ctx, "oauth", "validate_token", status)
	g.metrics.RecordDuration(ctx, "oauth", "validate_token", time.Since(start), status)

	return info, err
}

// Revoke records metrics for token revocations.
func (g *grantUseCaseWithMetrics) Revoke(
	ctx context.Context,
	plainToken string,
) (oauthDomain.RevokeResult, error) {
	start := time.Now()
	result, err := g.next.Revoke(ctx, plainToken)

	status := "success"
	if err != nil {
		status = metrics.StatusError
	}

	g.metrics.RecordOperation(ctx, "oauth", "revoke_token", status)
	g.metrics.RecordDuration(ctx, "oauth", "revoke_token", time.Since(start), status)

	return result, err
}

// CleanExpired records metrics for expired grant cleanup.
func (g *grantUseCaseWithMetrics) CleanExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := g.next.CleanExpired(ctx)

	status := "success"
	if err != nil {
		status = metrics.StatusError
	}

	g.metrics.RecordOperation(ctx, "oauth", "clean_expired", status)
	g.metrics.RecordDuration(ctx, "oauth", "clean_expired", time.Since(start), status)

	return removed, err
}
