package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"submeter/backend/services/submeter-service/internal/storage"
)

// DefaultKeyPrefix namespaces calculator keys.
const DefaultKeyPrefix = "submeter:"

var _ storage.Store = (*Store)(nil)

// Store keeps calculator settings in redis without expiry.
type Store struct {
	client redis.Cmdable
	prefix string
}

// NewStore returns redis-backed store.
func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

// Get returns the stored value; a missing key is not an error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storage.ErrEmptyKey
	}
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}
