// Package domain defines the key metadata models guarded by the access
// decision engine. keyguard stores key metadata only: key material and
// cryptographic operations live in the backing KMS.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Key represents key metadata for a managed encryption key.
type Key struct {
	// ID is the unique identifier for this key record.
	ID uuid.UUID
	// Name is the logical key name, unique across the service.
	Name string
	// Cipher is the cipher suite the key is declared for (e.g., "AES/CTR/NoPadding").
	Cipher string
	// Length is the key length in bits.
	Length int
	// Version is the current key version, incremented on rollover.
	Version int
	// CreatedAt is the UTC timestamp when the key was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last version change.
	UpdatedAt time.Time
}

// EEKGrant acknowledges an authorized encrypted-key operation.
// keyguard authorizes and records the operation; generating the actual key
// material is the backing KMS's job.
type EEKGrant struct {
	// KeyName is the key the operation was authorized for.
	KeyName string
	// KeyVersion is the key version at authorization time.
	KeyVersion int
	// Count is the number of encrypted keys authorized.
	Count int
	// IssuedAt is the UTC timestamp of the authorization.
	IssuedAt time.Time
}
