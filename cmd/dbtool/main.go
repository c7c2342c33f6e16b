package main

import (
	"bussd-route-service/internal/adapters/repositories"
	"bussd-route-service/internal/config"
	"bussd-route-service/internal/platform/db"
	"bussd-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadDotEnv()
	obs.SetupLogging(config.Get("LOG_LEVEL", "info"), true)

	app := &cli.App{
		Name:  "dbtool",
		Usage: "Initialize and seed the route store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create tables and indexes",
				Action: func(c *cli.Context) error {
					return withDB(c, func(ctx context.Context, conn *sql.DB) error {
						return initSchema(ctx, conn)
					})
				},
			},
			{
				Name:  "seed",
				Usage: "create the schema and load demo routes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Usage:   "JSON seed file",
						Value:   "data/seeds/routes.json",
						EnvVars: []string{"SEED_PATH"},
					},
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(ctx context.Context, conn *sql.DB) error {
						return initAndSeed(ctx, conn, c.String("path"))
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func withDB(c *cli.Context, fn func(ctx context.Context, conn *sql.DB) error) error {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	conn, err := db.Open(c.Context, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(c.Context, conn)
}

func initSchema(ctx context.Context, conn *sql.DB) error {
	log.Info().Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info().Msg("schema ready")
	return nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	if err := initSchema(ctx, conn); err != nil {
		return err
	}

	log.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().Msg("seeding complete")

	return nil
}
