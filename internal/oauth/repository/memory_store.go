// Package repository implements persistence for OAuth2 clients, codes, and
// tokens. The memory store backs unit tests and single-node deployments; the
// PostgreSQL and MySQL stores back production. All stores share the same
// contract: consuming a code and revoking a token are atomic check-and-mark
// operations, never read-then-write.
package repository

import (
	"context"
	"sync"
	"time"

	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
)

// MemoryStore is an in-memory client registry and token store.
// A single mutex guards every map, so the check-and-mark operations are
// trivially atomic.
type MemoryStore struct {
	mu      sync.Mutex
	clients map[string]oauthDomain.Client
	codes   map[string]oauthDomain.AuthorizationCode
	tokens  map[string]oauthDomain.AccessToken
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients: make(map[string]oauthDomain.Client),
		codes:   make(map[string]oauthDomain.AuthorizationCode),
		tokens:  make(map[string]oauthDomain.AccessToken),
	}
}

// CreateClient registers a new client, rejecting duplicate IDs.
func (m *MemoryStore) CreateClient(ctx context.Context, client *oauthDomain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[client.ID]; exists {
		return oauthDomain.ErrDuplicateClient
	}

	m.clients[client.ID] = *client
	return nil
}

// GetClient retrieves a client by ID.
func (m *MemoryStore) GetClient(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil, oauthDomain.ErrUnknownClient
	}

	copied := client
	return &copied, nil
}

// SaveCode stores a new authorization code, rejecting duplicate hashes.
func (m *MemoryStore) SaveCode(ctx context.Context, code *oauthDomain.AuthorizationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.codes[code.CodeHash]; exists {
		return oauthDomain.ErrDuplicateCode
	}

	m.codes[code.CodeHash] = *code
	return nil
}

// ConsumeCode atomically marks the code used and returns it. A code can be
// consumed at most once; the second and every later attempt gets ErrCodeUsed
// no matter how the calls interleave.
func (m *MemoryStore) ConsumeCode(
	ctx context.Context,
	codeHash string,
	usedAt time.Time,
) (*oauthDomain.AuthorizationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, exists := m.codes[codeHash]
	if !exists {
		return nil, oauthDomain.ErrCodeNotFound
	}
	if code.UsedAt != nil {
		return nil, oauthDomain.ErrCodeUsed
	}

	code.UsedAt = &usedAt
	m.codes[codeHash] = code

	copied := code
	return &copied, nil
}

// SaveToken stores a new access token, rejecting duplicate hashes.
func (m *MemoryStore) SaveToken(ctx context.Context, token *oauthDomain.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tokens[token.TokenHash]; exists {
		return oauthDomain.ErrDuplicateToken
	}

	m.tokens[token.TokenHash] = *token
	return nil
}

// GetToken retrieves an access token by hash.
func (m *MemoryStore) GetToken(ctx context.Context, tokenHash string) (*oauthDomain.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, exists := m.tokens[tokenHash]
	if !exists {
		return nil, oauthDomain.ErrTokenNotFound
	}

	copied := token
	return &copied, nil
}

// RevokeToken atomically marks the token revoked and reports its prior state.
// Revoking is idempotent: repeated calls report already_revoked, an unknown
// hash reports not_found, and neither is an error.
func (m *MemoryStore) RevokeToken(
	ctx context.Context,
	tokenHash string,
	revokedAt time.Time,
) (oauthDomain.RevokeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, exists := m.tokens[tokenHash]
	if !exists {
		return oauthDomain.RevokeResultNotFound, nil
	}
	if token.RevokedAt != nil {
		return oauthDomain.RevokeResultAlreadyRevoked, nil
	}

	token.RevokedAt = &revokedAt
	m.tokens[tokenHash] = token

	return oauthDomain.RevokeResultRevoked, nil
}

// DeleteExpired removes codes and tokens whose lifetime passed before now.
// Returns the number of records removed.
func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for hash, code := range m.codes {
		if code.Expired(now) {
			delete(m.codes, hash)
			removed++
		}
	}
	for hash, token := range m.tokens {
		if token.Expired(now) {
			delete(m.tokens, hash)
			removed++
		}
	}

	return removed, nil
}
