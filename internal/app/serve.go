package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"askverba.app/server/internal/achievement"
	"askverba.app/server/internal/auth"
	"askverba.app/server/internal/cli"
	"askverba.app/server/internal/config"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/httpapi"
	"askverba.app/server/internal/learning"
	"askverba.app/server/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8080, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 90*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	migrate := fs.Bool("migrate", false, "Apply the schema and seed achievements before serving")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
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

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	if *migrate {
		if _, err := migrateAndSeed(dbCtx, pool); err != nil {
			logger.Error().Err(err).Msg("serve failed to migrate database")
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			return 1
		}
	}

	backend, err := openCache(dbCtx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to redis")
		fmt.Fprintf(os.Stderr, "Failed to connect to redis: %v\n", err)
		return 1
	}
	defer backend.Close()

	translator, err := newTranslator(cfg, logger, backend.store, pool)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to configure translator")
		fmt.Fprintf(os.Stderr, "Failed to configure translator: %v\n", err)
		return 1
	}

	tokens, err := auth.NewTokenManager(cfg.AuthTokenSecret, cfg.AuthTokenIssuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure tokens: %v\n", err)
		return 1
	}

	health := []httpapi.HealthChecker{pool}
	if backend.redis != nil {
		health = append(health, backend.redis)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Auth:         pool,
		History:      pool,
		Health:       health,
		Translator:   translator,
		Learning:     learning.NewService(pool, logger),
		Achievements: achievement.NewService(pool, logger),
		Tokens:       tokens,
		Limiter:      backend.limiter,
	}, logger, serverOptions(cfg, *host, *port, *readTimeout, *writeTimeout, *shutdownTimeout))

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

func serverOptions(cfg *config.Config, host string, port int, readTimeout, writeTimeout, shutdownTimeout time.Duration) httpapi.Options {
	return httpapi.Options{
		Host:               host,
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		ShutdownTimeout:    shutdownTimeout,
		CookieSecure:       cfg.AuthCookieSecure,
		AllowedOrigins:     cfg.CORSAllowedOriginsList(),
		TranslateRateLimit: cfg.TranslateRateLimitPerMinute,
	}
}
