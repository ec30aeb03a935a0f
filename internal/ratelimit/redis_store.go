package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a CounterStore backed by a shared Redis instance, so rate
// limits hold across service replicas. INCR is atomic on the server side;
// the expiry is attached when a window's first call creates the key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a counter store on an existing Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// IncrementAndGet implements CounterStore
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return count, window, err
	}
	if ttl <= 0 {
		// Key survived without an expiry (crash between INCR and EXPIRE);
		// reattach one so the window still ends
		_ = s.client.Expire(ctx, key, window).Err()
		ttl = window
	}

	return count, ttl, nil
}
