package main

import (
	"context"
	"fmt"
	"os"

	"kisansarathi/internal/db"
	"kisansarathi/internal/seed"
	"kisansarathi/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with crop requirements and demo schemes",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-schemes",
			Usage: "Only sync crop requirements",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		if err := seed.SyncCrops(ctx, os.Stdout, store.NewCropRequirementRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed crop requirements: %w", err)
		}

		if c.Bool("skip-schemes") {
			return nil
		}

		if err := seed.SyncSchemes(ctx, os.Stdout, store.NewSchemeRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed schemes: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
