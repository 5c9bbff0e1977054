package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/monngon/bep/internal/errors"
)

// LearnedTTL is the lifetime of a learned translation before the store
// reaps it. Promotion deletes the row earlier.
const LearnedTTL = 365 * 24 * time.Hour

// LearnedCache is the time-limited translation store backed by Redis.
//
// Layout per slug:
//
//	learned:{slug}        JSON LearnedEntry
//	learned:uses:{slug}   usage counter (authoritative for promotion)
//	learned:canon:{name}  canonical-English secondary index → slug
type LearnedCache struct {
	client *redis.Client
	now    func() time.Time
}

func NewLearnedCache(client *redis.Client) *LearnedCache {
	return &LearnedCache{client: client, now: time.Now}
}

func learnedKey(slug string) string      { return "learned:" + slug }
func learnedUsesKey(slug string) string  { return "learned:uses:" + slug }
func learnedCanonKey(name string) string { return "learned:canon:" + name }

// Get retrieves a learned entry by normalized source slug. Expired rows
// that the store has not reaped yet are treated as absent.
func (c *LearnedCache) Get(ctx context.Context, slug string) (*LearnedEntry, error) {
	data, err := c.client.Get(ctx, learnedKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to read learned entry %q", slug), err)
	}

	var entry LearnedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("Discarding malformed learned entry", "slug", slug, "error", err)
		return nil, nil
	}

	if entry.Expired(c.now().UTC()) {
		return nil, nil
	}
	return &entry, nil
}

// GetByCanonical resolves an entry through the canonical-English index.
func (c *LearnedCache) GetByCanonical(ctx context.Context, canonicalEnglish string) (*LearnedEntry, error) {
	slug, err := c.client.Get(ctx, learnedCanonKey(canonicalEnglish)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to read canonical index for %q", canonicalEnglish), err)
	}
	return c.Get(ctx, slug)
}

// Create writes a new learned entry if none exists for the slug.
// Conditional so that concurrent translators of the same new ingredient
// do not clobber each other; the loser observes created=false and
// proceeds with its own locally computed translation.
func (c *LearnedCache) Create(ctx context.Context, entry LearnedEntry) (bool, error) {
	now := c.now().UTC()
	entry.AddedAt = now
	entry.LastUsedAt = now
	entry.ExpiresAt = now.Add(LearnedTTL)
	if entry.UsageCount == 0 {
		entry.UsageCount = 1
	}
	entry.AddedBy = SourceAI

	data, err := json.Marshal(entry)
	if err != nil {
		return false, apperrors.NewInternalError("failed to marshal learned entry", err)
	}

	created, err := c.client.SetNX(ctx, learnedKey(entry.NormalizedSource), data, LearnedTTL).Result()
	if err != nil {
		return false, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to create learned entry %q", entry.NormalizedSource), err)
	}
	if !created {
		return false, nil
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, learnedUsesKey(entry.NormalizedSource), entry.UsageCount, LearnedTTL)
	pipe.SetNX(ctx, learnedCanonKey(entry.CanonicalEnglish), entry.NormalizedSource, LearnedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// The main row exists; the counters are best-effort.
		slog.Warn("Failed to write learned entry side keys", "slug", entry.NormalizedSource, "error", err)
	}
	return true, nil
}

// Touch records a reuse: increments the usage counter atomically and
// refreshes lastUsedAt on the JSON row. Returns the new usage count so
// the caller can detect the promotion threshold crossing.
func (c *LearnedCache) Touch(ctx context.Context, slug string) (int64, error) {
	count, err := c.client.Incr(ctx, learnedUsesKey(slug)).Result()
	if err != nil {
		return 0, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to touch learned entry %q", slug), err)
	}

	// Last-writer-wins refresh of the JSON row; the counter key above is
	// the authoritative usage count.
	entry, err := c.Get(ctx, slug)
	if err != nil || entry == nil {
		return count, err
	}
	entry.UsageCount = count
	entry.LastUsedAt = c.now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return count, nil
	}
	if err := c.client.Set(ctx, learnedKey(slug), data, redis.KeepTTL).Err(); err != nil {
		slog.Warn("Failed to refresh learned entry row", "slug", slug, "error", err)
	}
	return count, nil
}

// Delete removes a learned entry and its side keys, typically after
// promotion into the dictionary.
func (c *LearnedCache) Delete(ctx context.Context, slug, canonicalEnglish string) error {
	keys := []string{learnedKey(slug), learnedUsesKey(slug)}
	if canonicalEnglish != "" {
		keys = append(keys, learnedCanonKey(canonicalEnglish))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to delete learned entry %q", slug), err)
	}
	return nil
}
