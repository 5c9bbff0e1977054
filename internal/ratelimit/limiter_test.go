package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/monngon/bep/internal/errors"
)

// scriptedCounter stands in for Redis: INCR counts per key, Expire
// records the TTLs it was asked to set.
type scriptedCounter struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	incrErr error
}

func newScriptedCounter() *scriptedCounter {
	return &scriptedCounter{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (c *scriptedCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if c.incrErr != nil {
		return redis.NewIntResult(0, c.incrErr)
	}
	c.counts[key]++
	return redis.NewIntResult(c.counts[key], nil)
}

func (c *scriptedCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	c.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestCheckAndReserveChargesAndCapsDaily(t *testing.T) {
	counter := newScriptedCounter()
	l := New(counter, 2)
	now := time.Date(2025, 3, 9, 15, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		res, err := l.CheckAndReserve(ctx, "user-1")
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be within the limit", i)
		}
		if res.Current != i {
			t.Errorf("request %d: Current = %d", i, res.Current)
		}
		if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !res.ResetAt.Equal(want) {
			t.Errorf("ResetAt = %v, want %v", res.ResetAt, want)
		}
	}

	res, err := l.CheckAndReserve(ctx, "user-1")
	if err != nil {
		t.Fatalf("third reserve: %v", err)
	}
	if res.Allowed {
		t.Error("third request must exceed a limit of 2")
	}
	if res.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", res.Remaining())
	}

	// Only the first increment sets the key's TTL.
	key := counterKey("user-1", now)
	if ttl, ok := counter.ttls[key]; !ok || ttl != counterTTL {
		t.Errorf("counter TTL = %v (set: %v), want %v", ttl, ok, counterTTL)
	}

	// A different user has an untouched counter.
	other, err := l.CheckAndReserve(ctx, "user-2")
	if err != nil {
		t.Fatalf("other user reserve: %v", err)
	}
	if !other.Allowed || other.Current != 1 {
		t.Errorf("other user result = %+v", other)
	}
}

func TestCheckAndReserveRollsOverAtMidnight(t *testing.T) {
	counter := newScriptedCounter()
	l := New(counter, 1)
	now := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	if res, err := l.CheckAndReserve(ctx, "user-1"); err != nil || !res.Allowed {
		t.Fatalf("first reserve: res=%+v err=%v", res, err)
	}
	if res, err := l.CheckAndReserve(ctx, "user-1"); err != nil || res.Allowed {
		t.Fatalf("second reserve should be over the limit: res=%+v err=%v", res, err)
	}

	// Two minutes later it is a new UTC day and a fresh counter.
	now = now.Add(2 * time.Minute)
	res, err := l.CheckAndReserve(ctx, "user-1")
	if err != nil {
		t.Fatalf("post-midnight reserve: %v", err)
	}
	if !res.Allowed || res.Current != 1 {
		t.Errorf("post-midnight result = %+v, want a fresh allowed count", res)
	}
}

func TestCheckAndReserveStoreFailure(t *testing.T) {
	counter := newScriptedCounter()
	counter.incrErr = errors.New("connection refused")
	l := New(counter, 20)

	_, err := l.CheckAndReserve(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected an error when the counter store is down")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeStoreUnavailable {
		t.Errorf("expected a store unavailable error, got %v", err)
	}
}

func TestCounterKeyUsesUTCDay(t *testing.T) {
	day := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	if got := counterKey("user-1", day); got != "rl:user-1:20250309" {
		t.Errorf("unexpected key %q", got)
	}

	nextDay := day.Add(2 * time.Minute)
	if counterKey("user-1", day) == counterKey("user-1", nextDay) {
		t.Error("expected different keys across the day boundary")
	}
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2025, 3, 9, 15, 30, 0, 0, time.UTC)
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := nextMidnight(now); !got.Equal(want) {
		t.Errorf("nextMidnight(%v) = %v, want %v", now, got, want)
	}
}

func TestResultRemaining(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want int
	}{
		{"under limit", Result{Limit: 20, Current: 5}, 15},
		{"at limit", Result{Limit: 20, Current: 20}, 0},
		{"over limit never negative", Result{Limit: 20, Current: 25}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}
