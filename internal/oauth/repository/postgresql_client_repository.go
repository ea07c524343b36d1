package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/allisson/keyguard/internal/database"
	apperrors "github.com/allisson/keyguard/internal/errors"
	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
)

// PostgreSQLClientRepository implements Client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// CreateClient registers a new client, rejecting duplicate IDs.
func (p *PostgreSQLClientRepository) CreateClient(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	redirectURIsJSON, err := json.Marshal(client.RedirectURIs)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal redirect uris")
	}
	allowedScopesJSON, err := json.Marshal(client.AllowedScopes)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allowed scopes")
	}

	query := `INSERT INTO oauth_clients (id, secret_hash, name, redirect_uris, allowed_scopes, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.SecretHash,
		client.Name,
		redirectURIsJSON,
		allowedScopesJSON,
		client.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return oauthDomain.ErrDuplicateClient
		}
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// GetClient retrieves a client by ID.
func (p *PostgreSQLClientRepository) GetClient(
	ctx context.Context,
	clientID string,
) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret_hash, name, redirect_uris, allowed_scopes, created_at
			  FROM oauth_clients
			  WHERE id = $1`

	var client oauthDomain.Client
	var redirectURIsJSON, allowedScopesJSON []byte

	err := querier.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.SecretHash,
		&client.Name,
		&redirectURIsJSON,
		&allowedScopesJSON,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrUnknownClient
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	if err := json.Unmarshal(redirectURIsJSON, &client.RedirectURIs); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal redirect uris")
	}
	if err := json.Unmarshal(allowedScopesJSON, &client.AllowedScopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal allowed scopes")
	}

	return &client, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLClientRepository creates a new PostgreSQL Client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}
