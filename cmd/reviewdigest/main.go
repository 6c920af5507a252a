package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/reviewdigest/internal/adapter/driving/cli"
	"github.com/ericfisherdev/reviewdigest/internal/config"
	"github.com/ericfisherdev/reviewdigest/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())
	slog.SetDefault(logger)
	logger.Debug("config loaded",
		"app_env", cfg.AppEnv,
		"db_path", cfg.DBPath,
		"log_level", cfg.LogLevel,
		"wait_on_rate_limit", cfg.GitHubWaitOnRateLimit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, os.Args[1:], cfg, logger)
}
