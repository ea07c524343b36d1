package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/keyguard/internal/database"
	apperrors "github.com/allisson/keyguard/internal/errors"
	oauthDomain "github.com/allisson/keyguard/internal/oauth/domain"
)

// MySQLTokenStore implements authorization code and access token persistence
// for MySQL. Same compare-and-set contract as the PostgreSQL store.
type MySQLTokenStore struct {
	db *sql.DB
}

// SaveCode stores a new authorization code, rejecting duplicate hashes.
func (m *MySQLTokenStore) SaveCode(ctx context.Context, code *oauthDomain.AuthorizationCode) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO authorization_codes
			  (code_hash, client_id, subject, scope, redirect_uri, expires_at, used_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		code.CodeHash,
		code.ClientID,
		code.Subject,
		code.Scope,
		code.RedirectURI,
		code.ExpiresAt,
		code.UsedAt,
		code.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return oauthDomain.ErrDuplicateCode
		}
		return apperrors.Wrap(err, "failed to save authorization code")
	}
	return nil
}

// ConsumeCode atomically marks the code used and returns it.
func (m *MySQLTokenStore) ConsumeCode(
	ctx context.Context,
	codeHash string,
	usedAt time.Time,
) (*oauthDomain.AuthorizationCode, error) {
	querier := database.GetTx(ctx, m.db)

	update := `UPDATE authorization_codes
			   SET used_at = ?
			   WHERE code_hash = ? AND used_at IS NULL`

	result, err := querier.ExecContext(ctx, update, usedAt, codeHash)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to consume authorization code")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get rows affected")
	}

	if rowsAffected == 0 {
		var exists bool
		check := `SELECT EXISTS(SELECT 1 FROM authorization_codes WHERE code_hash = ?)`
		if err := querier.QueryRowContext(ctx, check, codeHash).Scan(&exists); err != nil {
			return nil, apperrors.Wrap(err, "failed to check authorization code")
		}
		if exists {
			return nil, oauthDomain.ErrCodeUsed
		}
		return nil, oauthDomain.ErrCodeNotFound
	}

	query := `SELECT code_hash, client_id, subject, scope, redirect_uri, expires_at, used_at, created_at
			  FROM authorization_codes
			  WHERE code_hash = ?`

	var code oauthDomain.AuthorizationCode
	err = querier.QueryRowContext(ctx, query, codeHash).Scan(
		&code.CodeHash,
		&code.ClientID,
		&code.Subject,
		&code.Scope,
		&code.RedirectURI,
		&code.ExpiresAt,
		&code.UsedAt,
		&code.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load consumed authorization code")
	}

	return &code, nil
}

// SaveToken stores a new access token, rejecting duplicate hashes.
func (m *MySQLTokenStore) SaveToken(ctx context.Context, token *oauthDomain.AccessToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO access_tokens
			  (token_hash, client_id, subject, scope, issued_at, expires_at, revoked_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.TokenHash,
		token.ClientID,
		token.Subject,
		token.Scope,
		token.IssuedAt,
		token.ExpiresAt,
		token.RevokedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return oauthDomain.ErrDuplicateToken
		}
		return apperrors.Wrap(err, "failed to save access token")
	}
	return nil
}

// GetToken retrieves an access token by hash.
func (m *MySQLTokenStore) GetToken(
	ctx context.Context,
	tokenHash string,
) (*oauthDomain.AccessToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT token_hash, client_id, subject, scope, issued_at, expires_at, revoked_at
			  FROM access_tokens
			  WHERE token_hash = ?`

	var token oauthDomain.AccessToken
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.TokenHash,
		&token.ClientID,
		&token.Subject,
		&token.Scope,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access token")
	}

	return &token, nil
}

// RevokeToken atomically marks the token revoked and reports its prior state.
func (m *MySQLTokenStore) RevokeToken(
	ctx context.Context,
	tokenHash string,
	revokedAt time.Time,
) (oauthDomain.RevokeResult, error) {
	querier := database.GetTx(ctx, m.db)

	update := `UPDATE access_tokens
			   SET revoked_at = ?
			   WHERE token_hash = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, update, revokedAt, tokenHash)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to revoke access token")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to get rows affected")
	}

	if rowsAffected > 0 {
		return oauthDomain.RevokeResultRevoked, nil
	}

	var exists bool
	check := `SELECT EXISTS(SELECT 1 FROM access_tokens WHERE token_hash = ?)`
	if err := querier.QueryRowContext(ctx, check, tokenHash).Scan(&exists); err != nil {
		return "", apperrors.Wrap(err, "failed to check access token")
	}
	if exists {
		return oauthDomain.RevokeResultAlreadyRevoked, nil
	}
	return oauthDomain.RevokeResultNotFound, nil
}

// DeleteExpired removes codes and tokens whose lifetime passed before now.
func (m *MySQLTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var removed int64

	result, err := querier.ExecContext(ctx, `DELETE FROM authorization_codes WHERE expires_at < ?`, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired authorization codes")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	removed += count

	result, err = querier.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired access tokens")
	}
	count, err = result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	removed += count

	return removed, nil
}

// NewMySQLTokenStore creates a new MySQL token store.
func NewMySQLTokenStore(db *sql.DB) *MySQLTokenStore {
	return &MySQLTokenStore{db: db}
}
