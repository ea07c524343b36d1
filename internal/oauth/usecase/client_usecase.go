package usecase

import (
	"context"
	"time"

	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
	oauthService "github.com/allisson/keyguard/internal/oauth/service"
)

// clientUseCase implements the ClientUseCase interface.
type clientUseCase struct {
	clientRepo    ClientRepository
	secretService oauthService.SecretService
}

// Register stores a new client with its secret hashed with Argon2id.
// The plain secret never persists.
func (c *clientUseCase) Register(
	ctx context.Context,
	input RegisterClientInput,
) (*oauthDomain.Client, error) {
	secretHash, err := c.secretService.HashSecret(input.Secret)
	if err != nil {
		return nil, err
	}

	client := &oauthDomain.Client{
		ID:            input.ID,
		SecretHash:    secretHash,
		Name:          input.Name,
		RedirectURIs:  input.RedirectURIs,
		AllowedScopes: input.AllowedScopes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := c.clientRepo.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// Get retrieves a client by ID.
func (c *clientUseCase) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	return c.clientRepo.GetClient(ctx, clientID)
}

// Authenticate verifies the client's secret in constant time.
// An unknown client and a wrong secret are distinct errors internally; the
// HTTP layer maps both to the same invalid_client response.
func (c *clientUseCase) Authenticate(
	ctx context.Context,
	clientID, plainSecret string,
) (*oauthDomain.Client, error) {
	client, err := c.clientRepo.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if !c.secretService.CompareSecret(plainSecret, client.SecretHash) {
		return nil, oauthDomain.ErrClientAuthFailed
	}

	return client, nil
}

// NewClientUseCase creates a new client use case instance.
func NewClientUseCase(
	clientRepo ClientRepository,
	secretService oauthService.SecretService,
) ClientUseCase {
	return &clientUseCase{
		clientRepo:    clientRepo,
		secretService: secretService,
	}
}
