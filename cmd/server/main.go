package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/config"
	"github.com/riftcoach/stats-api/internal/handlers"
	"github.com/riftcoach/stats-api/internal/logic"
	"github.com/riftcoach/stats-api/internal/riot"
	"github.com/riftcoach/stats-api/internal/storage"
	"github.com/riftcoach/stats-api/internal/worker"
)

func main() {
	// Optional local overrides; the container environment is authoritative.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("connecting to postgres", "error", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("parsing clickhouse url", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("connecting to clickhouse", "error", err)
	}
	defer ch.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("parsing redis url", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	store := storage.NewMatchStore(pg, sugar)
	archive := storage.NewArchive(ch, sugar)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Store:         store,
		Archive:       archive,
		Logger:        logger,
	})
	pool.Start(ctx)
	defer pool.Stop()

	riotClient, err := riot.NewClient(riot.Config{
		APIKey:      cfg.RiotAPIKey,
		RegionalURL: cfg.RiotRegionalURL,
		PlatformURL: cfg.RiotPlatformURL,
		Timeout:     cfg.RiotTimeout,
	}, rdb, sugar)
	if err != nil {
		sugar.Fatalw("creating riot client", "error", err)
	}

	comp := compositionService(cfg, sugar)

	insights := logic.NewInsightsService(logic.AnalysisTuning{
		MinGamesChampML:    cfg.MinGamesChampML,
		MinGamesClustering: cfg.MinGamesClustering,
		NumClusters:        cfg.NumClusters,
	}, sugar)

	reportSvc := logic.NewReportService(riotClient, pool, insights, comp, cfg.MatchCountForAI, sugar)

	h := handlers.New(handlers.Config{
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		WorkerPool: pool,
		Logger:     logger,
		Report:     reportSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("shutdown failed", "error", err)
	}
}

// compositionService loads the optional offline-trained model. A missing
// or broken model leaves the insight path in its explanatory fallback.
func compositionService(cfg *config.Config, sugar *zap.SugaredLogger) *logic.CompositionInsights {
	if cfg.CompositionModelPath == "" {
		return logic.NewCompositionInsights(nil, nil, sugar)
	}
	model, err := logic.LoadLogisticModel(cfg.CompositionModelPath)
	if err != nil {
		sugar.Warnw("composition model unavailable", "path", cfg.CompositionModelPath, "error", err)
		return logic.NewCompositionInsights(nil, nil, sugar)
	}
	sugar.Infow("composition model loaded", "features", len(model.Features))
	return logic.NewCompositionInsights(model, model.Features, sugar)
}
