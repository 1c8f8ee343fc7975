package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultLockTTL = 90 * time.Second

// Redis serializes mint attempts per (user, event) pair. A SetNX key with a
// TTL is the admission gate: the TTL bounds how long a crashed holder can
// block the pair before the next attempt reconciles it.
type Redis struct {
	Client  *redis.Client
	Logger  *log.Logger
	LockTTL time.Duration
}

func NewRedis(client *redis.Client, lockTTL time.Duration) *Redis {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Redis{
		Client:  client,
		Logger:  log.Default(),
		LockTTL: lockTTL,
	}
}

func pairKey(userID, eventID string) string {
	return fmt.Sprintf("mint_lock:%s:%s", userID, eventID)
}

// LockPair acquires the exclusive mint admission for a (user, event) pair.
// Returns false when another request currently holds the pair.
func (r *Redis) LockPair(userID, eventID, requestID string) (bool, error) {
	key := pairKey(userID, eventID)
	ok, err := r.Client.SetNX(context.Background(), key, requestID, r.LockTTL).Result()
	return ok, err
}

// UnlockPair releases the admission only if this request still owns it.
func (r *Redis) UnlockPair(userID, eventID, requestID string) error {
	ctx := context.Background()
	key := pairKey(userID, eventID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == requestID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
