package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sokocrafts/sokoni/internal/config"
)

// Handler processes one raw envelope delivered to a consumer group.
// Returning an error requeues the envelope for redelivery, so handlers
// must be idempotent: processing the same envelope twice has to be a
// no-op. Malformed envelopes should be dropped by returning nil.
type Handler func(ctx context.Context, event []byte) error

// EventBus is the contract between the services and the message broker.
//
// Publish appends an envelope to a named topic. The partition key
// guarantees that any single consumer group observes all envelopes
// sharing that key in publication order; ordering across different keys
// is unspecified. Delivery is at-least-once: an envelope may be
// redelivered after a crash before acknowledgment, but is never
// silently dropped by the broker.
type EventBus interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Subscribe(ctx context.Context, topic, group string, handler Handler) error
	Close()
}

// AMQPURL builds the broker connection string from configuration.
func AMQPURL(cfg *config.Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQConfig.RabbitMQUser,
		cfg.RabbitMQConfig.RabbitMQPass,
		cfg.RabbitMQConfig.RabbitMQAddress,
		cfg.RabbitMQConfig.RabbitMQPort,
	)
}

// RabbitMQEventBus is a concrete implementation of EventBus on RabbitMQ.
//
// Topology: one durable direct exchange shared by all services; the
// topic name is the routing key. Each (topic, group) pair gets its own
// durable queue bound to the topic, so every group receives its own
// copy of each envelope while consumers within a group compete for
// them. Consumption uses manual acknowledgment with a prefetch of one,
// which keeps a single envelope in flight per consumer and preserves
// the per-queue FIFO order the partition-key guarantee relies on.
type RabbitMQEventBus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string

	mu       sync.Mutex
	consumer []*amqp.Channel
}

// NewRabbitMQEventBus connects to the broker and declares the shared
// durable exchange.
func NewRabbitMQEventBus(amqpURI, exchange string) (*RabbitMQEventBus, error) {
	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQEventBus{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish serializes the envelope and sends it to the topic. The call
// blocks for the broker round-trip; a broker outage surfaces as a
// transient error to the caller.
func (eb *RabbitMQEventBus) Publish(ctx context.Context, topic, key string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		CorrelationId: key,
		Headers: amqp.Table{
			"x-partition-key": key,
		},
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	return eb.channel.PublishWithContext(
		ctx,
		eb.exchange,
		topic, // routing key
		false, // mandatory
		false, // immediate
		publishing,
	)
}

// Subscribe binds the named durable consumer group to a topic and
// dispatches deliveries to the handler until ctx is cancelled. A
// handler error leaves the envelope unacknowledged and requeued.
func (eb *RabbitMQEventBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	// Channels are not safe for concurrent use, so each subscription
	// gets its own.
	ch, err := eb.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}

	queueName := fmt.Sprintf("%s.%s", topic, group)

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err := ch.QueueBind(queueName, topic, eb.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queueName, err)
	}

	// One unacknowledged delivery at a time keeps per-key order intact.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS on %s: %w", queueName, err)
	}

	deliveries, err := ch.Consume(
		queueName,
		group, // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", queueName, err)
	}

	eb.mu.Lock()
	eb.consumer = append(eb.consumer, ch)
	eb.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				if err := handler(ctx, delivery.Body); err != nil {
					// Requeue for redelivery; the handler is
					// responsible for being idempotent.
					_ = delivery.Nack(false, true)
					continue
				}
				_ = delivery.Ack(false)
			}
		}
	}()

	return nil
}

// Close closes all channels and the underlying connection.
func (eb *RabbitMQEventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, ch := range eb.consumer {
		ch.Close()
	}
	if eb.channel != nil {
		eb.channel.Close()
	}
	if eb.conn != nil {
		eb.conn.Close()
	}
}
