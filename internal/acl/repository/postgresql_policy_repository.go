// Package repository implements persistence for access-control rule sets.
// Rule sets are loaded wholesale and replaced wholesale: the policy store
// works on complete snapshots, never incremental edits.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	"github.com/allisson/keyguard/internal/database"
	apperrors "github.com/allisson/keyguard/internal/errors"
)

// PostgreSQLPolicyRepository implements rule persistence for PostgreSQL.
type PostgreSQLPolicyRepository struct {
	db *sql.DB
}

// ListAll retrieves the complete rule set ordered by subject.
func (p *PostgreSQLPolicyRepository) ListAll(ctx context.Context) ([]aclDomain.Rule, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT subject, operations, created_at FROM acl_rules ORDER BY subject`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list acl rules")
	}
	defer rows.Close()

	var rules []aclDomain.Rule
	for rows.Next() {
		var rule aclDomain.Rule
		var operationsJSON []byte

		if err := rows.Scan(&rule.Subject, &operationsJSON, &rule.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan acl rule")
		}

		if err := json.Unmarshal(operationsJSON, &rule.Operations); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal acl rule operations")
		}

		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate acl rules")
	}

	return rules, nil
}

// ReplaceAll replaces the stored rule set with the given rules in a single
// transaction, so readers loading afterwards see either the old or the new
// set in full.
func (p *PostgreSQLPolicyRepository) ReplaceAll(ctx context.Context, rules []aclDomain.Rule) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM acl_rules`); err != nil {
		return apperrors.Wrap(err, "failed to clear acl rules")
	}

	query := `INSERT INTO acl_rules (subject, operations, created_at) VALUES ($1, $2, $3)`

	for _, rule := range rules {
		operationsJSON, err := json.Marshal(rule.Operations)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal acl rule operations")
		}

		if _, err := querier.ExecContext(ctx, query, rule.Subject, operationsJSON, rule.CreatedAt); err != nil {
			return apperrors.Wrap(err, "failed to insert acl rule")
		}
	}

	return nil
}

// NewPostgreSQLPolicyRepository creates a new PostgreSQL rule repository.
func NewPostgreSQLPolicyRepository(db *sql.DB) *PostgreSQLPolicyRepository {
	return &PostgreSQLPolicyRepository{db: db}
}
