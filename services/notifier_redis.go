package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier implements Notifier over Redis pub/sub. Each customer has
// their own channel, so a subscription can never observe another
// customer's orders.
type RedisNotifier struct {
	client *redis.Client
}

var _ Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier connects to Redis at the given URL and verifies the
// connection with a ping.
func NewRedisNotifier(ctx context.Context, redisURL string) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNotifier{client: client}, nil
}

// NewRedisNotifierFromClient wraps an existing client (primarily for testing).
func NewRedisNotifierFromClient(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func customerChannel(customerID uint) string {
	return fmt.Sprintf("orders:customer:%d", customerID)
}

// PublishOrderChange publishes the change on the customer's channel.
func (n *RedisNotifier) PublishOrderChange(ctx context.Context, change OrderChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal order change: %w", err)
	}

	if err := n.client.Publish(ctx, customerChannel(change.CustomerID), body).Err(); err != nil {
		return fmt.Errorf("failed to publish order change: %w", err)
	}

	return nil
}

// Subscribe listens on the customer's channel and forwards decoded events.
// Malformed payloads are logged and skipped rather than closing the feed.
func (n *RedisNotifier) Subscribe(ctx context.Context, customerID uint) (<-chan OrderChange, func(), error) {
	pubsub := n.client.Subscribe(ctx, customerChannel(customerID))

	// Receive the subscription confirmation before handing out the channel
	// so publishes after Subscribe returns are never missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to order changes: %w", err)
	}

	out := make(chan OrderChange)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var change OrderChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("Dropping malformed order change payload: %v", err)
				continue
			}

			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close order change subscription: %v", err)
		}
	}
	return out, cancel, nil
}

// Close releases the underlying Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
