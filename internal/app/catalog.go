package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sokocrafts/sokoni/internal/cache"
	"github.com/sokocrafts/sokoni/internal/catalog"
	"github.com/sokocrafts/sokoni/internal/config"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/handlers"
	"github.com/sokocrafts/sokoni/internal/store"
)

// NewCatalog assembles the catalog service: listing CRUD behind the
// seller role gate, the Redis read cache and the consumer that removes
// a deleted account's listings.
func NewCatalog(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	app, err := newCore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	// The cache is optional: without a Redis address every read goes
	// straight to the store.
	var listingCache *cache.ListingCache
	if cfg.RedisConfig.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.RedisAddress,
			Password: cfg.RedisConfig.RedisPassword,
			DB:       cfg.RedisConfig.RedisDB,
		})
		listingCache = cache.NewListingCache(
			client,
			time.Duration(cfg.RedisConfig.CacheTTLSeconds)*time.Second,
			logger,
		)
		app.closers = append(app.closers, func() { client.Close() })
	}

	listingStore := store.NewPostgresListingStore(app.pool)
	listingEvents := eventbus.NewListingEventBus(app.bus, logger)

	service := catalog.NewService(listingStore, listingEvents, listingCache, logger)

	handler := &handlers.ListingHandler{Logger: logger, Service: service}
	handler.RegisterHandlers(app.router)

	consumer := catalog.NewConsumer(listingStore, listingEvents, listingCache, logger)
	app.consumers = append(app.consumers, consumer.Start)

	return app, nil
}
