// Package dedup guards against Slack re-delivering an interactive action.
// Slack retries callbacks it considers unanswered; without a delivery marker a
// retried approval would create a second calendar event.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/absencebot/absence-bot/internal/config"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// Store answers whether an interactive-action delivery is the first of its key.
// Release drops the marker again when the flow fails after marking, so the
// retry the reviewer is told to make is not swallowed as a duplicate.
type Store interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

const keyPrefix = "absence:action:"

// RedisStore implements Store with SETNX-and-TTL markers. Markers expire so
// the keyspace stays bounded; profiles and auth tokens are deliberately never
// cached here.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig, log *logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr()).Msg("Connected to Redis")
	return &RedisStore{client: client, ttl: cfg.DeliveryTTL(), log: log}, nil
}

// NewRedisStoreWithClient wraps an existing client (useful for testing).
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, log: log}
}

// FirstDelivery marks the key and reports whether it was unseen. A marker that
// already exists means Slack re-delivered the click.
func (s *RedisStore) FirstDelivery(ctx context.Context, key string) (bool, error) {
	first, err := s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark action delivery: %w", err)
	}
	if !first {
		s.log.Warn().Str("key", key).Msg("Duplicate interactive action delivery")
	}
	return first, nil
}

// Release deletes the delivery marker so the next delivery of the key counts
// as first again.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release action delivery: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
