package main

import (
	"context"
	_ "github.com/joho/godotenv/autoload"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/monngon/bep/internal/api"
	"github.com/monngon/bep/internal/cache"
	"github.com/monngon/bep/internal/config"
	"github.com/monngon/bep/internal/db"
	"github.com/monngon/bep/internal/logger"
	"github.com/monngon/bep/internal/metrics"
	"github.com/monngon/bep/internal/middleware"
	"github.com/monngon/bep/internal/ratelimit"
	"github.com/monngon/bep/internal/sentry"
	"github.com/monngon/bep/internal/services/nutrition"
	"github.com/monngon/bep/internal/services/suggest"
	"github.com/monngon/bep/internal/services/translate"
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
		shutdown, err := telemetry.InitTelemetry(ctx, "monngon-bep", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion)
	if cfg.SentryDSN != "" {
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

	// Redis backs the suggestion cache, learned cache, job records and
	// the rate limiter
	rdb, err := db.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	learned := store.NewLearnedCache(rdb)
	jobs := store.NewJobStore(rdb)

	provider := suggest.NewProvider(cfg.Suggestion, cfg.GroqKey, cfg.CerebrasKey, cfg.OpenAIKey)
	estimator := nutrition.New(dictionary, learned, provider)
	translator := translate.New(dictionary, learned, provider, estimator)

	limiter := ratelimit.New(rdb, cfg.Suggestion.DailyRequestLimit)
	matcher := cache.NewMatcher(cache.NewSuggestionCache(rdb))

	// Asynq client for enqueuing generation jobs
	asynqClient := worker.NewClient(cfg.RedisURL)
	defer asynqClient.Close()

	// API handlers
	apiServer := api.NewServer(cfg, translator, limiter, matcher, jobs, asynqClient)

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware("monngon-bep-server",
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig("monngon-bep-server", otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg))
		r.Post("/api/suggest", apiServer.HandleSuggest)
		r.Get("/api/suggest-status", apiServer.HandleJobStatus)
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
