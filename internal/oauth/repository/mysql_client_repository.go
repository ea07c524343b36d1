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

// MySQLClientRepository implements Client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// CreateClient registers a new client, rejecting duplicate IDs.
func (m *MySQLClientRepository) CreateClient(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	redirectURIsJSON, err := json.Marshal(client.RedirectURIs)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal redirect uris")
	}
	allowedScopesJSON, err := json.Marshal(client.AllowedScopes)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allowed scopes")
	}

	query := `INSERT INTO oauth_clients (id, secret_hash, name, redirect_uris, allowed_scopes, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return oauthDomain.ErrDuplicateClient
		}
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// GetClient retrieves a client by ID.
func (m *MySQLClientRepository) GetClient(
	ctx context.Context,
	clientID string,
) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, secret_hash, name, redirect_uris, allowed_scopes, created_at
			  FROM oauth_clients
			  WHERE id = ?`

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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLClientRepository creates a new MySQL Client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
