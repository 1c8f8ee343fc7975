package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client using miniredis for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

func TestLockPair_ExclusivePerPair(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	r := NewRedis(client, 0)

	ok, err := r.LockPair("user-1", "event-1", "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Same pair cannot be locked twice
	ok, err = r.LockPair("user-1", "event-1", "req-2")
	require.NoError(t, err)
	assert.False(t, ok)

	// A different pair is independent
	ok, err = r.LockPair("user-1", "event-2", "req-3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.LockPair("user-2", "event-1", "req-4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockPair_OnlyOwnerReleases(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	r := NewRedis(client, 0)

	ok, err := r.LockPair("user-1", "event-1", "req-1")
	require.NoError(t, err)
	require.True(t, ok)

	// A different request must not release the lock
	require.NoError(t, r.UnlockPair("user-1", "event-1", "req-other"))

	ok, err = r.LockPair("user-1", "event-1", "req-2")
	require.NoError(t, err)
	assert.False(t, ok, "lock should still be held by req-1")

	// The owner releases it
	require.NoError(t, r.UnlockPair("user-1", "event-1", "req-1"))

	ok, err = r.LockPair("user-1", "event-1", "req-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockPair_AlreadyReleased(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	r := NewRedis(client, 0)

	// Unlocking a pair that was never locked is a no-op
	assert.NoError(t, r.UnlockPair("user-1", "event-1", "req-1"))
}

func TestLockPair_ConcurrentAttemptsSingleWinner(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	r := NewRedis(client, 0)

	const numGoroutines = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			requestID := fmt.Sprintf("req-%d", attempt)
			ok, err := r.LockPair("user-1", "event-1", requestID)
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent attempt may acquire the pair")
}

func TestLockPair_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	r := NewRedis(client, 0)

	ok, err := r.LockPair("user-1", "event-1", "req-1")
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate a crashed holder: TTL elapses without an unlock
	mr.FastForward(r.LockTTL)

	ok, err = r.LockPair("user-1", "event-1", "req-2")
	require.NoError(t, err)
	assert.True(t, ok, "expired lock must be acquirable again")
}

func TestNewRedis_LockTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	// Zero falls back to the default; a configured TTL is used as-is.
	assert.Equal(t, defaultLockTTL, NewRedis(client, 0).LockTTL)

	r := NewRedis(client, 2*time.Second)
	require.Equal(t, 2*time.Second, r.LockTTL)

	ok, err := r.LockPair("user-1", "event-1", "req-1")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = r.LockPair("user-1", "event-1", "req-2")
	require.NoError(t, err)
	assert.True(t, ok, "configured TTL governs expiry")
}
