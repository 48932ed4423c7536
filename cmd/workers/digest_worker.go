package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/config"
	"uia-atlas/atlas-portal/internal/notifications"
	"uia-atlas/atlas-portal/internal/server"
)

// The digest worker mails the pending review queue to the admin inbox on
// the configured cron schedule. It runs apart from the API so that scaled
// API replicas do not send duplicate digests.
func main() {
	path := "config.json"
	if p := os.Getenv("ATLAS_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	if app.Digest == nil {
		logger.Fatal("Digest worker requires email delivery to be configured")
	}

	if len(os.Args) > 1 && os.Args[1] == "once" {
		sent, err := app.Digest.Run(ctx)
		if err != nil {
			logger.Fatal("Digest run failed", zap.Error(err))
		}
		logger.Info("Digest run complete", zap.Int("pending", sent))
		return
	}

	scheduler, err := notifications.NewScheduler(cfg.Digest.Schedule, app.Digest, logger)
	if err != nil {
		logger.Fatal("Invalid digest schedule", zap.Error(err))
	}

	logger.Info("Digest worker starting", zap.String("schedule", cfg.Digest.Schedule))
	scheduler.Start()

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	scheduler.Stop()
	logger.Info("Digest worker stopped")
}
