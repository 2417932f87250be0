package media

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sokocrafts/sokoni/internal/blob"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

// ConsumerGroup is the media service's durable consumer group on the
// listing-events topic.
const ConsumerGroup = "media-service-group"

// Consumer reacts to listing lifecycle events. When a listing is
// deleted, the assets attached to it are removed blob-first so no
// record ever points at missing metadata. Like the catalog cascade it
// is idempotent: a redelivered envelope finds no assets left.
type Consumer struct {
	store  store.AssetStore
	blobs  blob.Store
	events *eventbus.AssetEventBus
	logger *slog.Logger
}

func NewConsumer(
	assetStore store.AssetStore,
	blobs blob.Store,
	events *eventbus.AssetEventBus,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		store:  assetStore,
		blobs:  blobs,
		events: events,
		logger: logger,
	}
}

// Start binds the consumer group to the listing-events topic.
func (c *Consumer) Start(ctx context.Context, bus eventbus.EventBus) error {
	return bus.Subscribe(ctx, eventbus.TopicListingEvents, ConsumerGroup, c.handle)
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var event eventbus.ListingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Error("Dropping malformed listing event", slog.Any("error", err))
		return nil
	}

	c.logger.Info("Received listing event", slog.String("event_type", event.EventType))

	switch event.EventType {
	case eventbus.EventListingDeleted:
		return c.removeAssetsForListing(ctx, event.ListingID)
	default:
		return nil
	}
}

// removeAssetsForListing deletes every asset attached to the deleted
// listing. Blob deletion failures are logged and skipped over; the
// record deletion still happens so a flaky disk cannot wedge the
// cascade. A store error aborts the pass and relies on redelivery.
func (c *Consumer) removeAssetsForListing(ctx context.Context, listingID string) error {
	if listingID == "" {
		c.logger.Error("Dropping listing deleted event without a listing id")
		return nil
	}

	c.logger.Info("Deleting all assets for deleted listing", slog.String("listing_id", listingID))

	assets, err := c.store.FindByListing(ctx, listingID)
	if err != nil {
		return err
	}

	for _, asset := range assets {
		if err := c.blobs.Delete(ctx, asset.FileName); err != nil {
			c.logger.Error("Failed to delete blob during cascade, removing record anyway",
				slog.String("asset_id", asset.ID),
				slog.String("handle", asset.FileName),
				slog.Any("error", err),
			)
		}

		if err := c.store.Delete(ctx, asset.ID); err != nil {
			return err
		}

		if err := c.events.PublishAssetDeleted(ctx, asset.ID, listingID); err != nil {
			c.logger.Error("Failed to publish asset deleted event during cascade",
				slog.String("asset_id", asset.ID),
				slog.Any("error", err),
			)
		}
	}

	c.logger.Info("Assets deleted for listing",
		slog.String("listing_id", listingID),
		slog.Int("count", len(assets)),
	)
	return nil
}
