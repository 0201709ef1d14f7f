package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	store, mr := setupTestRedis(t)
	locker := NewRedisLocker(store.Client(), "test", time.Second, 100*time.Millisecond, testLogger())

	unlock, err := locker.Lock(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock"))

	unlock()
	assert.False(t, mr.Exists("test:lock"))
}

func TestRedisLocker_TimesOutWhileHeld(t *testing.T) {
	store, _ := setupTestRedis(t)
	holder := NewRedisLocker(store.Client(), "test", time.Minute, 50*time.Millisecond, testLogger())
	waiter := NewRedisLocker(store.Client(), "test", time.Minute, 50*time.Millisecond, testLogger())

	unlock, err := holder.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	start := time.Now()
	_, err = waiter.Lock(context.Background())
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRedisLocker_ContextCancel(t *testing.T) {
	store, _ := setupTestRedis(t)
	holder := NewRedisLocker(store.Client(), "test", time.Minute, time.Minute, testLogger())
	waiter := NewRedisLocker(store.Client(), "test", time.Minute, time.Minute, testLogger())

	unlock, err := holder.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = waiter.Lock(ctx)
	assert.Error(t, err)
}

func TestRedisLocker_ExpiredLeaseIsNotStolenBack(t *testing.T) {
	store, mr := setupTestRedis(t)
	first := NewRedisLocker(store.Client(), "test", time.Second, 50*time.Millisecond, testLogger())
	second := NewRedisLocker(store.Client(), "test", time.Second, 50*time.Millisecond, testLogger())

	unlockFirst, err := first.Lock(context.Background())
	require.NoError(t, err)

	// The first holder stalls past its lease and someone else takes over
	mr.FastForward(2 * time.Second)
	unlockSecond, err := second.Lock(context.Background())
	require.NoError(t, err)

	// The stale holder's release must not free the new holder's lock
	unlockFirst()
	assert.True(t, mr.Exists("test:lock"))

	unlockSecond()
	assert.False(t, mr.Exists("test:lock"))
}
