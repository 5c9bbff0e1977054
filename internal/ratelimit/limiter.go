// Package ratelimit enforces the per-user daily quota on suggestion
// requests. The counter lives in Redis keyed by user and UTC day, so
// every server instance sees the same count and increments are atomic.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/monngon/bep/internal/errors"
)

// counterTTL keeps a day's counter around slightly past its window so
// a request straddling midnight still reads a consistent value.
const counterTTL = 25 * time.Hour

// Result is the outcome of a quota reservation.
type Result struct {
	Allowed bool
	Limit   int
	Current int
	ResetAt time.Time
}

// Remaining reports how many requests the user has left in the window.
func (r Result) Remaining() int {
	if left := r.Limit - r.Current; left > 0 {
		return left
	}
	return 0
}

// Counter is the Redis command surface the limiter uses. *redis.Client
// satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Limiter counts suggestion requests per user per UTC day.
type Limiter struct {
	client Counter
	limit  int
	now    func() time.Time
}

// New creates a limiter with the given daily request limit.
func New(client Counter, limit int) *Limiter {
	return &Limiter{client: client, limit: limit, now: time.Now}
}

func counterKey(userID string, day time.Time) string {
	return fmt.Sprintf("rl:%s:%s", userID, day.Format("20060102"))
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// CheckAndReserve charges one request against the user's daily quota
// and reports whether it is allowed. The increment happens exactly once
// per call regardless of the request's eventual outcome; INCR is atomic
// so concurrent requests from the same user cannot lose updates.
func (l *Limiter) CheckAndReserve(ctx context.Context, userID string) (Result, error) {
	now := l.now().UTC()
	key := counterKey(userID, now)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to increment rate limit counter for user %s", userID), err)
	}
	if count == 1 {
		// First request of the day; cap the key's lifetime so stale
		// counters don't accumulate.
		if err := l.client.Expire(ctx, key, counterTTL).Err(); err != nil {
			return Result{}, apperrors.NewStoreUnavailableError(
				fmt.Sprintf("failed to set rate limit counter expiry for user %s", userID), err)
		}
	}

	return Result{
		Allowed: int(count) <= l.limit,
		Limit:   l.limit,
		Current: int(count),
		ResetAt: nextMidnight(now),
	}, nil
}
