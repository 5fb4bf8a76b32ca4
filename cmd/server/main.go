package main

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/adapters/cache"
	"freightflow/internal/adapters/directions"
	"freightflow/internal/adapters/hazards"
	"freightflow/internal/adapters/kpistore"
	"freightflow/internal/adapters/risk"
	"freightflow/internal/adapters/toll"
	"freightflow/internal/api"
	"freightflow/internal/config"
	"freightflow/internal/kpi"
	"freightflow/internal/platform/db"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"freightflow/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Mapbox, TfNSW, OpenAI, SQL caches, Redis)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Server.AppEnv, "freightflow")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := obs.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	conn, err := openCacheDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := cache.InitSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info("cache database ready", zap.String("dialect", conn.Dialect.String()))

	// Mapbox shares persistent caches so repeated corridors skip the API.
	provider, err := directions.NewMapboxProvider(directions.MapboxConfig{
		Token:   cfg.Mapbox.Token,
		BaseURL: cfg.Mapbox.BaseURL,
		Routes:  cache.NewSQLDirectionsCache(conn, cfg.Database.DirectionsCacheTTL, logger),
		Places:  cache.NewSQLGeocodeCache(conn, logger),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	hazardStore := hazards.NewStore(cfg.Hazards.Dir, "hazards", logger, metrics)
	trafficStore := hazardStore
	stores := []*hazards.Store{hazardStore}
	if cfg.Hazards.TrafficDir != cfg.Hazards.Dir {
		trafficStore = hazards.NewStore(cfg.Hazards.TrafficDir, "traffic", logger, metrics)
		stores = append(stores, trafficStore)
	}
	for _, s := range stores {
		if err := s.Load(ctx); err != nil {
			logger.Warn("no snapshot loaded yet", zap.String("dir", s.Dir()), zap.Error(err))
		}
		go func(s *hazards.Store) {
			if err := s.Watch(ctx); err != nil {
				logger.Error("snapshot watcher stopped", zap.String("dir", s.Dir()), zap.Error(err))
			}
		}(s)
	}

	if cfg.Hazards.InProcess {
		if cfg.TfNSW.APIKey == "" {
			logger.Warn("in-process ingest disabled: TFNSW_API_KEY not set")
		} else {
			feed := hazards.NewFeed(cfg.TfNSW.APIKey, "", nil, logger)
			poller := hazards.NewPoller(feed, cfg.Hazards.Dir, cfg.Hazards.Interval, cfg.Hazards.Retry, logger)
			go func() {
				if err := poller.Run(ctx); err != nil {
					logger.Error("ingest loop stopped", zap.Error(err))
				}
			}()
		}
	}

	classifier := risk.New(risk.Config{
		OpenAIKey: cfg.OpenAI.APIKey,
		Model:     cfg.OpenAI.Model,
		Hazards:   hazardStore,
		Logger:    logger,
		Metrics:   metrics,
	})

	var tollProvider ports.TollProvider
	if cfg.TfNSW.APIKey != "" {
		tollProvider = toll.NewTfNSWProvider(cfg.TfNSW.APIKey, "", nil, logger)
	} else {
		logger.Warn("TFNSW_API_KEY not set; tolls priced at zero")
	}

	tracker, err := newTracker(ctx, cfg, logger)
	if err != nil {
		return err
	}

	recommender, err := services.NewRecommender(services.RecommenderDeps{
		Directions: provider,
		Enricher:   services.NewEnricher(classifier, tollProvider, cfg.Routing.VehicleType, logger, metrics),
		Hazards:    hazardStore,
		Traffic:    trafficStore,
		KPI:        tracker,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}

	if cfg.Server.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Recommender:        recommender,
		Classifier:         classifier,
		Geocoder:           provider,
		Hazards:            hazardStore,
		Metrics:            metrics,
		Logger:             logger,
		DefaultDeadlineMin: cfg.Routing.DefaultDeadlineMin,
	})

	// Timeouts are tuned for cold-cache queries: directions, tolls and the
	// model are all called per candidate.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("kpi_mode", string(tracker.Mode())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func openCacheDB(ctx context.Context, cfg *config.Config) (*db.Conn, error) {
	if cfg.Database.URL == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("open cache db: create data dir: %w", err)
		}
	}
	return db.Open(ctx, cfg.Database.URL, cfg.Database.Path)
}

// newTracker builds the KPI tracker for the configured mode. Cumulative
// counters live in Redis when REDIS_ADDR is set and in memory otherwise.
func newTracker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*kpi.Tracker, error) {
	mode, err := kpi.ParseMode(cfg.KPI.Mode)
	if err != nil {
		return nil, err
	}
	if mode == kpi.ModeRolling {
		return kpi.NewRolling(cfg.KPI.Window), nil
	}

	if cfg.Redis.Addr == "" {
		return kpi.NewCumulative(kpi.NewCounters()), nil
	}

	client, err := kpistore.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	store := kpistore.NewRedisCounters(client, kpistore.InstanceKey())
	logger.Info("cumulative KPI in redis", zap.String("key", store.Key()))
	return kpi.NewCumulative(store), nil
}
