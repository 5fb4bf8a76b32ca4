package main

import (
	"context"
	"flag"
	"freightflow/internal/adapters/hazards"
	"freightflow/internal/config"
	"freightflow/internal/platform/obs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ingest snapshots the TfNSW hazard feed into the hazard directory, either
// once or on the configured cadence until interrupted.
func main() {
	once := flag.Bool("once", false, "fetch one snapshot and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TfNSW.APIKey == "" {
		log.Fatal("TFNSW_API_KEY is required")
	}

	logger, err := obs.NewLogger(cfg.Server.AppEnv, "ingest")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := hazards.NewFeed(cfg.TfNSW.APIKey, "", nil, logger)
	poller := hazards.NewPoller(feed, cfg.Hazards.Dir, cfg.Hazards.Interval, cfg.Hazards.Retry, logger)

	if *once {
		if _, err := poller.Once(ctx); err != nil {
			logger.Fatal("snapshot failed", zap.Error(err))
		}
		return
	}

	if err := poller.Run(ctx); err != nil {
		logger.Fatal("ingest loop stopped", zap.Error(err))
	}
}
