package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	aclUseCase "github.com/allisson/keyguard/internal/acl/usecase"
	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
)

// keyUseCase implements the KeyUseCase interface.
type keyUseCase struct {
	repo     KeyRepository
	policies aclUseCase.PolicyUseCase
	logger   *slog.Logger
}

// authorize evaluates the principal against the active policy snapshot.
func (k *keyUseCase) authorize(
	ctx context.Context,
	principal aclDomain.Principal,
	op aclDomain.Operation,
) error {
	decision := k.policies.Evaluate(ctx, principal, op)
	if !decision.Allowed() {
		return aclDomain.ErrAccessDenied
	}
	return nil
}

// Create registers new key metadata at version 1.
func (k *keyUseCase) Create(
	ctx context.Context,
	principal aclDomain.Principal,
	input CreateKeyInput,
) (*keysDomain.Key, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := &keysDomain.Key{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		Cipher:    input.Cipher,
		Length:    input.Length,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := k.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	k.logger.Info("key created",
		slog.String("name", key.Name),
		slog.String("principal", principal.Name),
	)
	return key, nil
}

// Delete removes key metadata by name.
func (k *keyUseCase) Delete(ctx context.Context, principal aclDomain.Principal, name string) error {
	if err := k.authorize(ctx, principal, aclDomain.OperationDelete); err != nil {
		return err
	}

	if err := k.repo.Delete(ctx, name); err != nil {
		return err
	}

	k.logger.Info("key deleted",
		slog.String("name", name),
		slog.String("principal", principal.Name),
	)
	return nil
}

// Rollover increments the key version and returns the updated metadata.
func (k *keyUseCase) Rollover(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
) (*keysDomain.Key, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationRollover); err != nil {
		return nil, err
	}

	if err := k.repo.IncrementVersion(ctx, name, time.Now().UTC()); err != nil {
		return nil, err
	}

	key, err := k.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	k.logger.Info("key rolled over",
		slog.String("name", name),
		slog.Int("version", key.Version),
		slog.String("principal", principal.Name),
	)
	return key, nil
}

// ListNames returns all key names.
func (k *keyUseCase) ListNames(ctx context.Context, principal aclDomain.Principal) ([]string, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationGetKeys); err != nil {
		return nil, err
	}
	return k.repo.ListNames(ctx)
}

// GetMetadata returns the metadata of a single key.
func (k *keyUseCase) GetMetadata(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
) (*keysDomain.Key, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationGetMetadata); err != nil {
		return nil, err
	}
	return k.repo.GetByName(ctx, name)
}

// GenerateEEK authorizes generation of count encrypted keys against the
// current key version. The backing KMS performs the actual generation.
func (k *keyUseCase) GenerateEEK(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
	count int,
) (*keysDomain.EEKGrant, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationGenerateEEK); err != nil {
		return nil, err
	}

	key, err := k.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	grant := &keysDomain.EEKGrant{
		KeyName:    key.Name,
		KeyVersion: key.Version,
		Count:      count,
		IssuedAt:   time.Now().UTC(),
	}

	k.logger.Info("encrypted key generation authorized",
		slog.String("name", name),
		slog.Int("count", count),
		slog.String("principal", principal.Name),
	)
	return grant, nil
}

// DecryptEEK authorizes decryption of an encrypted key issued at the given
// key version.
func (k *keyUseCase) DecryptEEK(
	ctx context.Context,
	principal aclDomain.Principal,
	name string,
	version int,
) (*keysDomain.EEKGrant, error) {
	if err := k.authorize(ctx, principal, aclDomain.OperationDecryptEEK); err != nil {
		return nil, err
	}

	key, err := k.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	grant := &keysDomain.EEKGrant{
		KeyName:    key.Name,
		KeyVersion: version,
		Count:      1,
		IssuedAt:   time.Now().UTC(),
	}

	k.logger.Info("encrypted key decryption authorized",
		slog.String("name", name),
		slog.Int("version", version),
		slog.String("principal", principal.Name),
	)
	return grant, nil
}

// NewKeyUseCase creates a new key use case instance.
func NewKeyUseCase(
	repo KeyRepository,
	policies aclUseCase.PolicyUseCase,
	logger *slog.Logger,
) KeyUseCase {
	return &keyUseCase{
		repo:     repo,
		policies: policies,
		logger:   logger,
	}
}
