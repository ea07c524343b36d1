package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/keyguard/internal/app"
	"github.com/allisson/keyguard/internal/config"
	oauthService "github.com/allisson/keyguard/internal/oauth/service"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
)

// RunCreateClient registers a new OAuth client. When no secret is given a
// random one is generated. Outputs client ID and plain secret in either text
// or JSON format; the secret is shown only once.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientID string,
	name string,
	secret string,
	redirectURIs string,
	scopes string,
	format string,
	ioTuple IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("creating new client", slog.String("client_id", clientID))

	defer closeContainer(container, logger)

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize client use case: %w", err)
	}

	if secret == "" {
		plain, _, err := oauthService.NewCredentialService().GenerateCredential()
		if err != nil {
			return fmt.Errorf("failed to generate client secret: %w", err)
		}
		secret = plain
	}

	input := oauthUseCase.RegisterClientInput{
		ID:            clientID,
		Secret:        secret,
		Name:          name,
		RedirectURIs:  splitCommaList(redirectURIs),
		AllowedScopes: splitCommaList(scopes),
	}

	client, err := clientUseCase.Register(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		outputClientJSON(client.ID, secret, ioTuple.Writer)
	} else {
		outputClientText(client.ID, secret, ioTuple.Writer)
	}

	logger.Info("client created successfully",
		slog.String("client_id", client.ID),
		slog.String("name", name),
	)

	return nil
}

// splitCommaList splits a comma-separated flag value into trimmed entries.
func splitCommaList(value string) []string {
	var entries []string
	for _, entry := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

// outputClientText outputs the result in human-readable text format.
func outputClientText(clientID, secret string, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", clientID)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", secret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}

// outputClientJSON outputs the result in JSON format for machine consumption.
func outputClientJSON(clientID, secret string, writer io.Writer) {
	result := map[string]string{
		"client_id": clientID,
		"secret":    secret,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
