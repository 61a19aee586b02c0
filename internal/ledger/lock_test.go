package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	lk := NewLocalLocker()
	ctx := context.Background()

	unlock, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)

	// Other keys are independent.
	other, err := lk.Lock(ctx, "u2")
	require.NoError(t, err)
	other()

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = lk.Lock(short, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotent

	again, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)
	again()

	lk.mu.Lock()
	assert.Empty(t, lk.keys, "idle keys are dropped")
	lk.mu.Unlock()
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	lk := NewRedisLocker(client, time.Second)
	lk.poll = 5 * time.Millisecond
	return lk, mr
}

func TestRedisLocker(t *testing.T) {
	lk, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisLockPrefix+"u1"))

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = lk.Lock(short, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists(redisLockPrefix+"u1"))

	again, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_ExpiredHolderCannotReleaseNewLock(t *testing.T) {
	lk, mr := newRedisLocker(t)
	ctx := context.Background()

	staleUnlock, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := lk.Lock(ctx, "u1")
	require.NoError(t, err)

	staleUnlock()
	assert.True(t, mr.Exists(redisLockPrefix+"u1"), "stale token must not delete the new lock")

	unlock()
	assert.False(t, mr.Exists(redisLockPrefix+"u1"))
}
