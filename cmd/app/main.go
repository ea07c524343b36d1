// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyguard/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "keyguard",
		Usage:   "Authorization layer for key-management services",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-client",
				Usage: "Register a new OAuth client",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable client name",
					},
					&cli.StringFlag{
						Name:    "secret",
						Aliases: []string{"s"},
						Usage:   "Client secret (omit to generate a random one)",
					},
					&cli.StringFlag{
						Name:    "redirect-uris",
						Aliases: []string{"r"},
						Usage:   "Comma-separated list of allowed redirect URIs",
					},
					&cli.StringFlag{
						Name:    "scopes",
						Usage:   "Comma-separated list of allowed scopes",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateClient(
						ctx,
						cmd.String("id"),
						cmd.String("name"),
						cmd.String("secret"),
						cmd.String("redirect-uris"),
						cmd.String("scopes"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "load-policies",
				Usage: "Replace the ACL rule set from a JSON policy file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Path to the JSON policy file",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunLoadPolicies(ctx, cmd.String("file"))
				},
			},
			{
				Name:  "revoke-token",
				Usage: "Revoke an access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "The plain access token value",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRevokeToken(ctx, cmd.String("token"), commands.DefaultIO())
				},
			},
			{
				Name:  "clean-expired-grants",
				Usage: "Delete expired authorization codes and access tokens",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanExpiredGrants(ctx, commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
