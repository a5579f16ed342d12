package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const referenceKeyPrefix = "payref:"

// RedisReferenceStore holds reference → item bindings in redis with the
// payment-window TTL. Expiry is the only cleanup: abandoned payment
// attempts leak nothing beyond the TTL.
type RedisReferenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReferenceStore(client *redis.Client, ttl time.Duration) *RedisReferenceStore {
	return &RedisReferenceStore{client: client, ttl: ttl}
}

func (s *RedisReferenceStore) Bind(ctx context.Context, reference, itemID string) error {
	return s.client.Set(ctx, referenceKeyPrefix+reference, itemID, s.ttl).Err()
}

func (s *RedisReferenceStore) Lookup(ctx context.Context, reference string) (string, error) {
	itemID, err := s.client.Get(ctx, referenceKeyPrefix+reference).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return itemID, nil
}
