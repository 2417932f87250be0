package eventbus

import (
	"context"
	"log/slog"
)

// AssetEventBus provides a type-safe API for asset events on the
// asset-events topic, keyed by asset id.
type AssetEventBus struct {
	bus    EventBus
	logger *slog.Logger
}

// NewAssetEventBus creates a new AssetEventBus instance on top of the
// given transport.
func NewAssetEventBus(bus EventBus, logger *slog.Logger) *AssetEventBus {
	return &AssetEventBus{bus: bus, logger: logger}
}

// PublishAssetUploaded publishes an asset uploaded event.
func (b *AssetEventBus) PublishAssetUploaded(ctx context.Context, assetID, listingID, storagePath string) error {
	event := AssetEvent{
		EventType:   EventAssetUploaded,
		AssetID:     assetID,
		ListingID:   listingID,
		StoragePath: storagePath,
	}

	b.logger.Info("Publishing asset uploaded event",
		slog.String("topic", TopicAssetEvents),
		slog.String("asset_id", assetID),
		slog.String("listing_id", listingID),
	)

	return b.bus.Publish(ctx, TopicAssetEvents, assetID, event)
}

// PublishAssetDeleted publishes an asset deleted event.
func (b *AssetEventBus) PublishAssetDeleted(ctx context.Context, assetID, listingID string) error {
	event := AssetEvent{
		EventType: EventAssetDeleted,
		AssetID:   assetID,
		ListingID: listingID,
	}

	b.logger.Info("Publishing asset deleted event",
		slog.String("topic", TopicAssetEvents),
		slog.String("asset_id", assetID),
		slog.String("listing_id", listingID),
	)

	return b.bus.Publish(ctx, TopicAssetEvents, assetID, event)
}
