package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new development master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "Master key ID (e.g., dev-2026-10-16)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Optional KMS key URI used to encrypt the generated key (e.g., base64key://, hashivault://)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "create-index-key",
			Usage: "Generate a new blind index key",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateIndexKey(commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "hash-admin-password",
			Usage: "Hash the admin password read from stdin for ADMIN_PASSWORD_HASH",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "username",
					Aliases: []string{"u"},
					Value:   "admin",
					Usage:   "Admin username",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunHashAdminPassword(
					container.PasswordService(),
					commands.DefaultIO(),
					cmd.String("username"),
				)
			},
		},
	}
}
