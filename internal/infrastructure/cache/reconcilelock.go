// Package cache provides Redis-backed coordination primitives.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReconcileLock is a best-effort distributed lock so only one
// replica runs the reconciliation sweep per interval. The TTL covers a
// crashed holder; an unlucky double sweep is harmless because imports
// are idempotent.
type RedisReconcileLock struct {
	client *redis.Client
	key    string
	token  string
}

// NewRedisReconcileLock creates a lock instance. The token identifies
// this holder so a replica never releases another replica's lock.
func NewRedisReconcileLock(client *redis.Client, key, token string) *RedisReconcileLock {
	return &RedisReconcileLock{
		client: client,
		key:    key,
		token:  token,
	}
}

// TryAcquire attempts to take the lock for the given TTL. Returns false
// without error when another holder has it.
func (l *RedisReconcileLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire reconcile lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock only if this instance still holds it.
func (l *RedisReconcileLock) Release(ctx context.Context) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
	if err := l.client.Eval(ctx, script, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release reconcile lock: %w", err)
	}
	return nil
}
