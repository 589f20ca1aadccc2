package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/app/apiapp"
	"github.com/Oohan21/utopia-drafts/internal/config"
	"github.com/Oohan21/utopia-drafts/internal/infra/logger"
)

const (
	defaultConfigPath = "configs/config.yaml"
	// Long enough for CloseAll to flush every dirty draft to storage.
	shutdownGrace = 20 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "draftsvc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := apiapp.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build draft service: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.Run() }()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("draft api stopped", zap.Error(err))
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
		return err
	case <-ctx.Done():
		log.Info("shutting down draft service")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
