package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

var (
	// ErrLockTimeout is returned when another process held the lock for the
	// whole acquisition window.
	ErrLockTimeout = errors.New("timed out waiting for battle lock")

	// Only delete if we own the lock
	releaseScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

const lockPollInterval = 25 * time.Millisecond

// RedisLocker is a cross-process battle.Locker using SET NX with a lease.
// The lease bounds how long a crashed holder can block everyone else.
type RedisLocker struct {
	client  redis.UniversalClient
	key     string
	ttl     time.Duration
	maxWait time.Duration
	logger  *slog.Logger
}

var _ battle.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a lock named "<keyPrefix>:lock".
func NewRedisLocker(client redis.UniversalClient, keyPrefix string, ttl, maxWait time.Duration, logger *slog.Logger) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if maxWait <= 0 {
		maxWait = 5 * time.Second
	}
	return &RedisLocker{
		client:  client,
		key:     keyPrefix + ":lock",
		ttl:     ttl,
		maxWait: maxWait,
		logger:  logger,
	}
}

// Lock acquires the lock, polling until maxWait elapses or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for attempt := 1; ; attempt++ {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire battle lock: %w", err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		if time.Now().After(deadline) {
			l.logger.Warn("Gave up waiting for battle lock", "key", l.key, "attempts", attempt)
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for battle lock: %w", ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

// release runs on its own context so a cancelled request still frees the lock.
func (l *RedisLocker) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		l.logger.Error("Failed to release battle lock", "key", l.key, "error", err)
	}
}
