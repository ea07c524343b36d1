package usecase

import (
	"context"
	"time"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	apperrors "github.com/allisson/keyguard/internal/errors"
	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
	"github.com/allisson/keyguard/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// statusFor maps an operation outcome to a metrics status. Authorization
// denials are recorded separately from other failures.
func statusFor(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, aclDomain.ErrAccessDenied):
		return metrics.StatusDeny
	default:
		return metrics.StatusError
	}
}

func (k *keyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := statusFor(err)
	k.metrics.RecordOperation(ctx, "keys", operation, status)
	k.metrics.RecordDuration(ctx, "keys", operation, time.Since(start), status)
}

func (k *keyUseCaseWithMetrics) Create(
	ctx context.Context,
	principal aclDomain.Principal,
	input CreateKeyInput,
) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := k.next.Create(ctx, principal, input)
	k.record(ctx, "create", start, err)
	return key, err
}

func (k *keyUseCaseWithMetrics) Delete(ctx context.Context, principal aclDomain.Principal, name string) error {
	start := time.Now()
	err := k.next.Delete(ctx, principal, name)
	k.record(ctx, "delete", start, err)
	return err
}

func (k *keyUseCaseWithMetrics) Rollover(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := k.next.Rollover(ctx, principal, name)
	k.record(ctx, "rollover", start, err)
	return key, err
}

func (k *keyUseCaseWithMetrics) ListNames(ctx context.Context, principal aclDomain.Principal) ([]string, error) {
	start := time.Now()
	names, err := k.next.ListNames(ctx, principal)
	k.record(ctx, "list_names", start, err)
	return names, err
}

func (k *keyUseCaseWithMetrics) GetMetadata(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := k.next.GetMetadata(ctx, principal, name)
	k.record(ctx, "get_metadata", start, err)
	return key, err
}

func (k *keyUseCaseWithMetrics) GenerateEEK(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
	count int,
) (*keysDomain.EEKGrant, error) {
	start := time.Now()
	grant, err := k.next.GenerateEEK(ctx, principal, name, count)
	k.record(ctx, "generate_eek", start, err)
	return grant, err
}

func (k *keyUseCaseWithMetrics) DecryptEEK(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
	version int,
) (*keysDomain.EEKGrant, error) {
	start := time.Now()
	grant, err := k.next.DecryptEEK(ctx, principal, name, version)
	k.record(ctx, "decrypt_eek", start, err)
	return grant, err
}
