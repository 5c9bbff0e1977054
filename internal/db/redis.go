package db

import (
	"log/slog"
	"strings"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects a go-redis client with OTel tracing and
// metrics instrumentation. The same client backs the suggestion cache,
// the learned translation cache, job records and the rate limiter.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	var opt *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		opt = parsed
	} else {
		// Plain host:port
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	if err := redisotel.InstrumentTracing(client); err != nil {
		slog.Warn("Failed to instrument Redis tracing", "error", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		slog.Warn("Failed to instrument Redis metrics", "error", err)
	}

	return client, nil
}
