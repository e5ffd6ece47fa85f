package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisEventKeyPrefix = "stripe:webhook:event:"

// RedisEventStore is an EventStore backed by Redis, shared by every replica
// of the service.
type RedisEventStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEventStore creates a Redis backed event store using the client
// provided. Entries expire after ttl (DefaultEventTTL if zero).
func NewRedisEventStore(client *redis.Client, ttl time.Duration) *RedisEventStore {
	if ttl == 0 {
		ttl = DefaultEventTTL
	}
	return &RedisEventStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL, creates the client and checks the
// connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// MarkProcessed implements EventStore. The check and the write are a single
// SET NX, so two replicas receiving the same delivery agree on which one saw
// it first.
func (r *RedisEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	set, err := r.client.SetNX(ctx, redisEventKeyPrefix+eventID, time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", eventID, err)
	}
	return !set, nil
}
