package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

const DefaultKeyPrefix = "battlestate"

// RedisStorage keeps the battle record as a JSON string under a single key.
// The record has no TTL; an encounter lasts until it is reset.
type RedisStorage struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage connects to the Redis server at redisURL, which may be a
// bare host:port or a redis:// URL.
func NewRedisStorage(redisURL, keyPrefix string, logger *slog.Logger) (*RedisStorage, error) {
	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisStorageWithClient(client, keyPrefix, logger), nil
}

// NewRedisStorageWithClient wraps an existing client.
func NewRedisStorageWithClient(client redis.UniversalClient, keyPrefix string, logger *slog.Logger) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStorage{
		client: client,
		key:    keyPrefix + ":current",
		logger: logger,
	}
}

// NewRedisClient builds a client from either a URL or a host:port address.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis: address is required")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	return redis.NewClient(opt), nil
}

// Key returns the Redis key holding the record.
func (r *RedisStorage) Key() string {
	return r.key
}

// Client exposes the underlying client so a RedisLocker can share it.
func (r *RedisStorage) Client() redis.UniversalClient {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection polls Ping until Redis answers or ctx ends.
func (r *RedisStorage) WaitForConnection(ctx context.Context, retryDelay time.Duration) error {
	for attempt := 1; ; attempt++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established", "attempts", attempt)
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}

func (r *RedisStorage) Load(ctx context.Context) (*battle.BattleState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("No battle state in Redis, using default", "key", r.key)
			return battle.Default(), nil
		}
		r.logger.Error("Failed to load battle state", "key", r.key, "error", err)
		return nil, battle.PersistenceError("read", err)
	}

	bs, err := decodeState(data)
	if err != nil {
		r.logger.Error("Battle state in Redis is corrupt", "key", r.key, "error", err)
		return nil, battle.PersistenceError("decode", err)
	}
	return bs, nil
}

func (r *RedisStorage) Save(ctx context.Context, bs *battle.BattleState) error {
	data, err := encodeState(bs, false)
	if err != nil {
		return battle.PersistenceError("encode", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save battle state", "key", r.key, "error", err)
		return battle.PersistenceError("write", err)
	}
	return nil
}
