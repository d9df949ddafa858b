// Package ratelimit implements a fixed-window rate limiter backed by a
// shared counter store, so every edge instance sees the same budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/edge-rag/internal/model"
	"github.com/kart-io/edge-rag/pkg/utils/json"
)

// CounterStore persists per-key window counters. Get returns (nil, nil)
// when no counter exists for the key.
type CounterStore interface {
	Get(ctx context.Context, key string) (*model.RateWindow, error)
	Put(ctx context.Context, key string, window *model.RateWindow, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Limiter is a fixed-window rate limiter. Decisions are made against the
// shared store so concurrent instances share the same counters. The window
// boundary never slides: a burst at second 59 gets a fresh budget at
// second 60.
type Limiter struct {
	store  CounterStore
	max    int
	window time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter admitting max requests per window and key.
func New(store CounterStore, max int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether a request for key may proceed. The stored counter
// is only written when the request is admitted, so a denied burst cannot
// extend its own window. A store failure returns allowed=true together
// with the error; callers decide how loudly to fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	window, err := l.store.Get(ctx, key)
	if err != nil {
		return true, fmt.Errorf("rate limit counter read failed: %w", err)
	}

	now := l.now().Unix()
	if window == nil {
		window = &model.RateWindow{Count: 0, WindowStart: now}
	}

	if now-window.WindowStart < int64(l.window/time.Second) {
		if window.Count >= l.max {
			return false, nil
		}
		window.Count++
	} else {
		window = &model.RateWindow{Count: 1, WindowStart: now}
	}

	if err := l.store.Put(ctx, key, window, l.window); err != nil {
		return true, fmt.Errorf("rate limit counter write failed: %w", err)
	}

	return true, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}

// RedisStore is a CounterStore on Redis. Counters are stored as JSON with a
// TTL equal to the window so stale entries expire on their own.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get fetches the window counter for key.
func (s *RedisStore) Get(ctx context.Context, key string) (*model.RateWindow, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var window model.RateWindow
	if err := json.Unmarshal(data, &window); err != nil {
		return nil, fmt.Errorf("corrupt rate window for key %s: %w", key, err)
	}
	return &window, nil
}

// Put stores the window counter for key with the given TTL.
func (s *RedisStore) Put(ctx context.Context, key string, window *model.RateWindow, ttl time.Duration) error {
	data, err := json.Marshal(window)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes the counter for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
