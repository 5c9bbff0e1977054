package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/monngon/bep/internal/errors"
)

// SuggestionTTL is the lifetime of a cached suggestion set and its
// reverse index rows; both expire together.
const SuggestionTTL = 24 * time.Hour

// SuggestionCache provides Redis-backed storage for generated
// suggestion sets plus the reverse ingredient index used by the
// partial matcher.
type SuggestionCache struct {
	client *redis.Client
	now    func() time.Time
}

// NewSuggestionCache creates a suggestion cache with the given Redis client.
func NewSuggestionCache(client *redis.Client) *SuggestionCache {
	return &SuggestionCache{client: client, now: time.Now}
}

func entryKey(cacheKey string) string { return "suggest:" + cacheKey }
func indexKey(ing string) string      { return "suggest:ing:" + ing }

// GetExact retrieves a cached suggestion set by key. Expired rows that
// the store has not reaped yet are treated as absent.
func (c *SuggestionCache) GetExact(ctx context.Context, cacheKey string) (*Entry, error) {
	data, err := c.client.Get(ctx, entryKey(cacheKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to read suggestion entry %q", cacheKey), err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("Discarding malformed suggestion entry", "cache_key", cacheKey, "error", err)
		return nil, nil
	}

	if entry.Expired(c.now().UTC()) {
		return nil, nil
	}
	return &entry, nil
}

// KeysContaining returns all cache keys indexed under an ingredient.
// The index is eventually consistent with the entries themselves; the
// matcher re-validates every candidate it fetches.
func (c *SuggestionCache) KeysContaining(ctx context.Context, ingredient string) ([]string, error) {
	keys, err := c.client.SMembers(ctx, indexKey(ingredient)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to read ingredient index %q", ingredient), err)
	}
	return keys, nil
}

// Put stores an entry under its cache key and adds one reverse index
// row per distinct ingredient. Entry and index rows share the same TTL.
func (c *SuggestionCache) Put(ctx context.Context, entry *Entry) error {
	now := c.now().UTC()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(SuggestionTTL)

	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal suggestion entry", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, entryKey(entry.CacheKey), data, SuggestionTTL)
	for _, ing := range entry.Ingredients {
		pipe.SAdd(ctx, indexKey(ing), entry.CacheKey)
		pipe.Expire(ctx, indexKey(ing), SuggestionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to store suggestion entry %q", entry.CacheKey), err)
	}
	return nil
}
