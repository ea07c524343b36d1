// Package repository implements key metadata persistence.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/allisson/keyguard/internal/database"
	apperrors "github.com/allisson/keyguard/internal/errors"
	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
)

// PostgreSQLKeyRepository implements Key persistence for PostgreSQL.
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// Create inserts a new key, rejecting duplicate names.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *keysDomain.Key) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO kms_keys (id, name, cipher, length, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Name,
		key.Cipher,
		key.Length,
		key.Version,
		key.CreatedAt,
		key.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return keysDomain.ErrDuplicateKey
		}
		return apperrors.Wrap(err, "failed to create key")
	}
	return nil
}

// GetByName retrieves a key by its logical name.
func (p *PostgreSQLKeyRepository) GetByName(ctx context.Context, name string) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, cipher, length, version, created_at, updated_at
			  FROM kms_keys
			  WHERE name = $1`

	var key keysDomain.Key
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&key.ID,
		&key.Name,
		&key.Cipher,
		&key.Length,
		&key.Version,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key")
	}

	return &key, nil
}

// ListNames retrieves all key names ordered alphabetically.
func (p *PostgreSQLKeyRepository) ListNames(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, `SELECT name FROM kms_keys ORDER BY name`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate key names")
	}

	return names, nil
}

// IncrementVersion bumps the key's version for a rollover.
func (p *PostgreSQLKeyRepository) IncrementVersion(
	ctx context.Context,
	name string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE kms_keys SET version = version + 1, updated_at = $1 WHERE name = $2`

	result, err := querier.ExecContext(ctx, query, updatedAt, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment key version")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return keysDomain.ErrKeyNotFound
	}

	return nil
}

// Delete removes a key by name.
func (p *PostgreSQLKeyRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM kms_keys WHERE name = $1`, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete key")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return keysDomain.ErrKeyNotFound
	}

	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL Key repository.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}
