// Package usecase implements key management operations behind the access
// decision engine. Every operation authorizes the calling principal before
// touching key metadata.
package usecase

import (
	"context"
	"time"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
)

// KeyRepository defines the interface for key metadata persistence.
type KeyRepository interface {
	Create(ctx context.Context, key *keysDomain.Key) error
	GetByName(ctx context.Context, name string) (*keysDomain.Key, error)
	ListNames(ctx context.Context) ([]string, error)
	IncrementVersion(ctx context.Context, name string, updatedAt time.Time) error
	Delete(ctx context.Context, name string) error
}

// CreateKeyInput represents the data needed to create a key.
type CreateKeyInput struct {
	Name   string
	Cipher string
	Length int
}

// KeyUseCase defines the access-guarded key management operations. Each method
// evaluates the principal against the active policy snapshot and returns
// ErrAccessDenied when the decision is a denial.
type KeyUseCase interface {
	// Create registers new key metadata at version 1.
	Create(ctx context.Context, principal aclDomain.Principal, input CreateKeyInput) (*keysDomain.Key, error)
	// Delete removes key metadata by name.
	Delete(ctx context.Context, principal aclDomain.Principal, name string) error
	// Rollover increments the key version.
	Rollover(ctx context.Context, principal aclDomain.Principal, name string) (*keysDomain.Key, error)
	// ListNames returns all key names.
	ListNames(ctx context.Context, principal aclDomain.Principal) ([]string, error)
	// GetMetadata returns the metadata of a single key.
	GetMetadata(ctx context.Context, principal aclDomain.Principal, name string) (*keysDomain.Key, error)
	// GenerateEEK authorizes generation of count encrypted keys.
	GenerateEEK(ctx context.Context, principal aclDomain.Principal, name string, count int) (*keysDomain.EEKGrant, error)
	// DecryptEEK authorizes decryption of an encrypted key.
	DecryptEEK(ctx context.Context, principal aclDomain.Principal, name string, version int) (*keysDomain.EEKGrant, error)
}
