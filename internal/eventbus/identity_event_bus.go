// Documentation for the identity event bus
//
// OVERVIEW:
// The IdentityEventBus provides a typed publishing API for identity
// account lifecycle events on the identity-events topic. Envelopes are
// keyed by the user id, so a consumer group sees every envelope for one
// account in the order it was published.
//
// EVENT TYPES:
// - IDENTITY_CREATED: published after a new account has been committed
// - IDENTITY_DELETED: published after an account has been removed
//
// Publishing always happens after the local state change is durable
// (publish-after-commit). A publish failure at that point is logged by
// the caller and the business operation still succeeds; the resulting
// inconsistency window is an accepted property of the design.

package eventbus

import (
	"context"
	"log/slog"
)

// IdentityEventBus provides a type-safe API for identity events.
type IdentityEventBus struct {
	bus    EventBus
	logger *slog.Logger
}

// NewIdentityEventBus creates a new IdentityEventBus instance on top of
// the given transport.
func NewIdentityEventBus(bus EventBus, logger *slog.Logger) *IdentityEventBus {
	return &IdentityEventBus{bus: bus, logger: logger}
}

// PublishIdentityCreated publishes an identity created event.
func (b *IdentityEventBus) PublishIdentityCreated(ctx context.Context, userID, email, role string) error {
	event := IdentityEvent{
		EventType: EventIdentityCreated,
		UserID:    userID,
		Email:     email,
		Role:      role,
	}

	b.logger.Info("Publishing identity created event",
		slog.String("topic", TopicIdentityEvents),
		slog.String("user_id", userID),
	)

	return b.bus.Publish(ctx, TopicIdentityEvents, userID, event)
}

// PublishIdentityDeleted publishes an identity deleted event. Downstream
// services react by cascading the deletion to everything the account
// owned.
func (b *IdentityEventBus) PublishIdentityDeleted(ctx context.Context, userID string) error {
	event := IdentityEvent{
		EventType: EventIdentityDeleted,
		UserID:    userID,
	}

	b.logger.Info("Publishing identity deleted event",
		slog.String("topic", TopicIdentityEvents),
		slog.String("user_id", userID),
	)

	return b.bus.Publish(ctx, TopicIdentityEvents, userID, event)
}
