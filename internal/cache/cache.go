// Package cache implements the suggestion cache: deterministic key
// generation, the Redis-backed store with its reverse ingredient index,
// and the exact/partial matcher.
package cache

import (
	"context"
)

// Store defines the suggestion cache operations the matcher needs.
type Store interface {
	// GetExact retrieves a cache entry by key.
	// Returns nil if the key is not found or has expired.
	GetExact(ctx context.Context, cacheKey string) (*Entry, error)

	// KeysContaining returns the cache keys of all entries whose
	// suggestions contain the given canonical ingredient.
	KeysContaining(ctx context.Context, ingredient string) ([]string, error)

	// Put stores an entry and indexes it under every ingredient it contains.
	Put(ctx context.Context, entry *Entry) error
}
