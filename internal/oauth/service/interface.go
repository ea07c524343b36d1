// Package service provides credential generation and hashing for the OAuth2
// grant flow: random codes and tokens hashed with SHA-256, and client secrets
// hashed with Argon2id.
package service

// CredentialService defines operations for authorization code and access
// token generation and hashing. Codes and tokens are short-lived random
// values, so a fast hash (SHA-256) is appropriate; only the hash is stored.
type CredentialService interface {
	// GenerateCredential creates a new cryptographically secure random value.
	// Returns both the plain value (handed to the client exactly once) and
	// the hash to be stored.
	GenerateCredential() (plain string, hash string, err error)

	// HashCredential hashes a plain value for lookup against stored hashes.
	HashCredential(plain string) string
}

// SecretService defines operations for client secret hashing and comparison.
// Client secrets are long-lived passwords and use Argon2id.
type SecretService interface {
	// HashSecret hashes a plain client secret for storage.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret compares a plain secret against a stored hash in
	// constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
