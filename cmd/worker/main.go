package main

import (
	"context"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monngon/bep/internal/cache"
	"github.com/monngon/bep/internal/config"
	"github.com/monngon/bep/internal/db"
	"github.com/monngon/bep/internal/logger"
	"github.com/monngon/bep/internal/metrics"
	"github.com/monngon/bep/internal/sentry"
	"github.com/monngon/bep/internal/services/nutrition"
	"github.com/monngon/bep/internal/services/suggest"
	"github.com/monngon/bep/internal/store"
	"github.com/monngon/bep/internal/telemetry"
	"github.com/monngon/bep/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, "monngon-bep-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env)
	slog.SetDefault(logger) // Set as default so slog.Info() uses our handler

	// Database connection
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	dictionary := store.NewDictionary(pool)
	if err := dictionary.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure dictionary schema: %v", err)
	}
	// Seed the staple ingredients; inserts are skipped where rows exist
	if err := dictionary.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap dictionary: %v", err)
	}

	rdb, err := db.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	learned := store.NewLearnedCache(rdb)
	jobs := store.NewJobStore(rdb)
	suggestionCache := cache.NewSuggestionCache(rdb)

	provider := suggest.NewProvider(cfg.Suggestion, cfg.GroqKey, cfg.CerebrasKey, cfg.OpenAIKey)
	estimator := nutrition.New(dictionary, learned, provider)

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	processor := worker.NewSuggestionProcessor(
		jobs,
		suggestionCache,
		dictionary,
		learned,
		provider,
		estimator,
		time.Duration(cfg.Suggestion.GenerationTimeout)*time.Second,
		workerMetrics,
	)

	// Asynq server
	srv := worker.NewServer(cfg.RedisURL)

	// Register handlers
	mux := asynq.NewServeMux()
	mux.Use(worker.SentryMiddleware)
	mux.Use(worker.OTelMiddleware)
	mux.HandleFunc(worker.TypeGenerateSuggestion, processor.HandleGenerateSuggestion)

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutting down worker...")
		srv.Shutdown()
	}()

	slog.Info("Starting worker", "redis", cfg.RedisURL)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
