package store

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLogStore implements LogStore on Redis. Entries are write-once and
// kept without TTL; trimming the log is an operational concern.
type RedisLogStore struct {
	client *goredis.Client
}

var _ LogStore = (*RedisLogStore)(nil)

// NewRedisLogStore creates a Redis-backed log store.
func NewRedisLogStore(client *goredis.Client) *RedisLogStore {
	return &RedisLogStore{client: client}
}

// Put stores value under key.
func (s *RedisLogStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}
