package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	"github.com/allisson/keyguard/internal/app"
	"github.com/allisson/keyguard/internal/config"
)

// policyFileEntry is the JSON shape of one rule in the policy file.
type policyFileEntry struct {
	Subject    string   `json:"subject"`
	Operations []string `json:"operations"`
}

// RunLoadPolicies replaces the persisted ACL rule set with the contents of a
// JSON policy file and swaps the new set into the active snapshot. The file
// is a JSON array of {"subject": ..., "operations": [...]} entries; the
// whole set replaces the previous one atomically.
//
// Requirements: Database must be migrated and accessible.
func RunLoadPolicies(ctx context.Context, path string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("loading policies", slog.String("path", path))

	defer closeContainer(container, logger)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}

	rules, err := parsePolicyFile(data)
	if err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	policyUseCase, err := container.PolicyUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize policy use case: %w", err)
	}

	if err := policyUseCase.Replace(ctx, rules); err != nil {
		return fmt.Errorf("failed to replace policies: %w", err)
	}

	logger.Info("policies loaded successfully", slog.Int("rules", len(rules)))
	return nil
}

// parsePolicyFile decodes and validates the policy file contents.
func parsePolicyFile(data []byte) ([]aclDomain.Rule, error) {
	var entries []policyFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid policy JSON: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("policy file contains no rules")
	}

	now := time.Now().UTC()
	rules := make([]aclDomain.Rule, 0, len(entries))
	for _, entry := range entries {
		if entry.Subject == "" {
			return nil, fmt.Errorf("policy rule with empty subject")
		}
		if len(entry.Operations) == 0 {
			return nil, fmt.Errorf("policy rule for %q has no operations", entry.Subject)
		}

		operations := make([]aclDomain.Operation, 0, len(entry.Operations))
		for _, raw := range entry.Operations {
			op, err := aclDomain.ParseOperation(raw)
			if err != nil {
				return nil, fmt.Errorf("policy rule for %q: %w", entry.Subject, err)
			}
			operations = append(operations, op)
		}

		rules = append(rules, aclDomain.Rule{
			Subject:    entry.Subject,
			Operations: operations,
			CreatedAt:  now,
		})
	}

	return rules, nil
}
