package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyguard/internal/app"
	"github.com/allisson/keyguard/internal/config"
)

// RunRevokeToken revokes an access token by its plain value. Revocation is
// idempotent; the command reports the token's prior state.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeToken(ctx context.Context, token string, ioTuple IOTuple) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	defer closeContainer(container, logger)

	grantUseCase, err := container.GrantUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize grant use case: %w", err)
	}

	result, err := grantUseCase.Revoke(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	outputRevokeResult(string(result), ioTuple.Writer)

	logger.Info("revoke completed", slog.String("result", string(result)))
	return nil
}

// outputRevokeResult reports the revocation outcome.
func outputRevokeResult(result string, writer io.Writer) {
	switch result {
	case "revoked":
		_, _ = fmt.Fprintln(writer, "Token revoked.")
	case "already_revoked":
		_, _ = fmt.Fprintln(writer, "Token was already revoked.")
	default:
		_, _ = fmt.Fprintln(writer, "Token not found.")
	}
}
