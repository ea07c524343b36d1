package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyguard/internal/app"
	"github.com/allisson/keyguard/internal/config"
)

// RunCleanExpiredGrants deletes expired authorization codes and access
// tokens. Consumed codes and revoked tokens stay until they expire so
// replay attempts remain distinguishable from unknown values.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredGrants(ctx context.Context, ioTuple IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("cleaning expired grants")

	defer closeContainer(container, logger)

	grantUseCase, err := container.GrantUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize grant use case: %w", err)
	}

	count, err := grantUseCase.CleanExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean expired grants: %w", err)
	}

	outputCleanExpired(count, ioTuple.Writer)

	logger.Info("cleanup completed", slog.Int64("count", count))
	return nil
}

// outputCleanExpired reports the cleanup outcome.
func outputCleanExpired(count int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Removed %d expired grant(s)\n", count)
}
