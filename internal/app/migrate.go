package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"askverba.app/server/internal/achievement"
	"askverba.app/server/internal/cli"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/logging"
)

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Migration timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("migrate failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	seeded, err := migrateAndSeed(ctx, pool)
	if err != nil {
		logger.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		return 1
	}

	logger.Info().Int("achievements", seeded).Msg("database migrated")
	fmt.Printf("ok: schema up to date, %d achievements seeded\n", seeded)
	return 0
}

func migrateAndSeed(ctx context.Context, pool *db.Pool) (int, error) {
	if err := pool.Migrate(ctx); err != nil {
		return 0, err
	}
	seeded, err := achievement.SeedCatalog(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("seed achievements: %w", err)
	}
	return seeded, nil
}
