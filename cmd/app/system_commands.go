package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
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
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "rewrap-envelopes",
			Usage: "Re-encrypt patient envelopes under the active master key and migrate legacy plaintext",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   0,
					Usage:   "Patients per batch (defaults to REWRAP_BATCH_SIZE)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				envelopeUseCase, err := container.EnvelopeUseCase()
				if err != nil {
					return err
				}
				patientUseCase, err := container.PatientUseCase()
				if err != nil {
					return err
				}

				batchSize := int(cmd.Int("batch-size"))
				if batchSize == 0 {
					batchSize = cfg.RewrapBatchSize
				}

				return commands.RunRewrapEnvelopes(
					ctx,
					patientUseCase,
					container.Logger(),
					envelopeUseCase.CurrentKeyID(),
					batchSize,
				)
			},
		},
		{
			Name:  "blind-index",
			Usage: "Compute the blind index of a value for direct database lookups",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "field",
					Aliases: []string{"F"},
					Value:   patientDomain.NameIndexField,
					Usage:   "Indexed column as <table>:<field>",
				},
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Value to index (normalized before hashing)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				indexer, err := container.BlindIndexer()
				if err != nil {
					return err
				}

				return commands.RunBlindIndex(
					indexer,
					commands.DefaultIO().Writer,
					cmd.String("field"),
					cmd.String("value"),
					cmd.String("format"),
				)
			},
		},
	}
}
