package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/app"
	"github.com/bookverse/bookverse/internal/syncer"
	"github.com/bookverse/bookverse/pkg/config"
	"github.com/bookverse/bookverse/pkg/logging"
	"github.com/bookverse/bookverse/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting BookVerse syncer")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	s := syncer.NewSync(a.Feed, a.Catalog, cfg.Feed.SyncInterval)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sync loop stopped", zap.Error(err))
	}

	logger.Info("Syncer exited")
}
