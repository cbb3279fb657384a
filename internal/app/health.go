package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"askverba.app/server/internal/cli"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/logging"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database and Redis ping timeout")

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
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	users, err := pool.CountUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("health check query failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	fmt.Printf("ok: database ping successful (%d users)\n", users)

	if len(cfg.RedisAddressList()) == 0 {
		fmt.Println("skip: redis not configured")
		return 0
	}
	backend, err := openCache(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("redis health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer backend.Close()

	logger.Info().
		Dur("timeout", *timeout).
		Msg("health check passed")
	fmt.Println("ok: redis ping successful")
	return 0
}
