package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	"github.com/allisson/keyguard/internal/database"
	apperrors "github.com/allisson/keyguard/internal/errors"
)

// MySQLPolicyRepository implements rule persistence for MySQL.
// Uses ? placeholders instead of PostgreSQL's $N syntax.
type MySQLPolicyRepository struct {
	db *sql.DB
}

// ListAll retrieves the complete rule set ordered by subject.
func (m *MySQLPolicyRepository) ListAll(ctx context.Context) ([]aclDomain.Rule, error) {
	querier := database.GetTx(ctx, m.db)

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

// ReplaceAll replaces the stored rule set with the given rules.
func (m *MySQLPolicyRepository) ReplaceAll(ctx context.Context, rules []aclDomain.Rule) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM acl_rules`); err != nil {
		return apperrors.Wrap(err, "failed to clear acl rules")
	}

	query := `INSERT INTO acl_rules (subject, operations, created_at) VALUES (?, ?, ?)`

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

// NewMySQLPolicyRepository creates a new MySQL rule repository.
func NewMySQLPolicyRepository(db *sql.DB) *MySQLPolicyRepository {
	return &MySQLPolicyRepository{db: db}
}
