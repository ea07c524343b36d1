package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/keyguard/internal/errors"
)

// credentialService implements CredentialService using SHA-256 hashing.
type credentialService struct{}

// GenerateCredential creates a new cryptographically secure 32-byte random
// value. The value is base64 URL-encoded for transmission; the SHA-256 hash
// is what gets stored.
func (c *credentialService) GenerateCredential() (plain string, hash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random credential")
	}

	plain = base64.URLEncoding.EncodeToString(randomBytes)
	hash = c.HashCredential(plain)

	return plain, hash, nil
}

// HashCredential hashes a plain value using SHA-256.
// Returns the hash as a hexadecimal string.
func (c *credentialService) HashCredential(plain string) string {
	hash := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(hash[:])
}

// NewCredentialService creates a new CredentialService instance.
func NewCredentialService() CredentialService {
	return &credentialService{}
}
