// Package cache holds the catalog service's Redis read cache. The
// cache is strictly best-effort: a cold key or an unreachable Redis
// degrades to the backing store and never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sokocrafts/sokoni/internal/store"
)

// ListingCache caches listing records by id. A nil *ListingCache is
// valid and behaves as an always-miss cache, so callers never need to
// branch on whether caching is configured.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewListingCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ListingCache {
	return &ListingCache{client: client, ttl: ttl, logger: logger}
}

func listingKey(id string) string {
	return "listing:" + id
}

// Get returns the cached listing for id, or ok=false on a miss or any
// cache failure.
func (c *ListingCache) Get(ctx context.Context, id string) (*store.Listing, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Listing cache read failed",
			slog.String("listing_id", id),
			slog.Any("error", err),
		)
		return nil, false
	}

	var listing store.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		c.logger.Warn("Dropping undecodable listing cache entry",
			slog.String("listing_id", id),
			slog.Any("error", err),
		)
		return nil, false
	}
	return &listing, true
}

// Set stores the listing under its id for the configured TTL.
func (c *ListingCache) Set(ctx context.Context, listing *store.Listing) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(listing)
	if err != nil {
		c.logger.Warn("Failed to encode listing for cache",
			slog.String("listing_id", listing.ID),
			slog.Any("error", err),
		)
		return
	}

	if err := c.client.Set(ctx, listingKey(listing.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Listing cache write failed",
			slog.String("listing_id", listing.ID),
			slog.Any("error", err),
		)
	}
}

// Invalidate drops the cached entry for id, if any.
func (c *ListingCache) Invalidate(ctx context.Context, id string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, listingKey(id)).Err(); err != nil {
		c.logger.Warn("Listing cache invalidation failed",
			slog.String("listing_id", id),
			slog.Any("error", err),
		)
	}
}
