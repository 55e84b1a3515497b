package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes each alert as JSON on a pub/sub channel.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisNotifier(client redis.UniversalClient, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) SendLowStockAlert(ctx context.Context, in LowStockAlertInput) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("redis notifier: marshal: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("redis notifier: publish to %s: %w", n.channel, err)
	}
	return nil
}
