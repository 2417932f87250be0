package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memorySubscription struct {
	group   string
	handler Handler
}

// InMemoryEventBus is an EventBus for tests and single-process setups.
//
// Publish delivers the envelope synchronously to every group subscribed
// to the topic, in publication order, which trivially satisfies the
// per-key ordering guarantee. Handler errors are swallowed the way a
// broker would park a failed delivery; at-least-once semantics are
// exercised in tests by publishing the same envelope again.
type InMemoryEventBus struct {
	mu   sync.Mutex
	subs map[string][]memorySubscription
}

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		subs: make(map[string][]memorySubscription),
	}
}

func (eb *InMemoryEventBus) Publish(ctx context.Context, topic, key string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	eb.mu.Lock()
	subs := make([]memorySubscription, len(eb.subs[topic]))
	copy(subs, eb.subs[topic])
	eb.mu.Unlock()

	// Deliver outside the lock: handlers may publish follow-up
	// envelopes (cascades) on this same bus.
	for _, sub := range subs {
		_ = sub.handler(ctx, body)
	}
	return nil
}

func (eb *InMemoryEventBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, sub := range eb.subs[topic] {
		if sub.group == group {
			return fmt.Errorf("group %s is already subscribed to %s", group, topic)
		}
	}

	eb.subs[topic] = append(eb.subs[topic], memorySubscription{group: group, handler: handler})
	return nil
}

func (eb *InMemoryEventBus) Close() {}
