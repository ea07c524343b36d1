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

// MySQLKeyRepository implements Key persistence for MySQL.
type MySQLKeyRepository struct {
	db *sql.DB
}

// Create inserts a new key, rejecting duplicate names.
func (m *MySQLKeyRepository) Create(ctx context.Context, key *keysDomain.Key) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO kms_keys (id, name, cipher, length, version, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return keysDomain.ErrDuplicateKey
		}
		return apperrors.Wrap(err, "failed to create key")
	}
	return nil
}

// GetByName retrieves a key by its logical name.
func (m *MySQLKeyRepository) GetByName(ctx context.Context, name string) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, cipher, length, version, created_at, updated_at
			  FROM kms_keys
			  WHERE name = ?`

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
func (m *MySQLKeyRepository) ListNames(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLKeyRepository) IncrementVersion(
	ctx context.Context,
	name string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE kms_keys SET version = version + 1, updated_at = ? WHERE name = ?`

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
func (m *MySQLKeyRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM kms_keys WHERE name = ?`, name)
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLKeyRepository creates a new MySQL Key repository.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}
