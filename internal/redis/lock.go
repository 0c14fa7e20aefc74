package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("resource lock not acquired")
)

// Locker guards the critical sections of the reservation engine per resource.
type Locker interface {
	WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisResourceLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisResourceLocker creates a locker backed by a per-resource Redis key.
// Acquisition is retried with a short interval until wait elapses, so callers
// block briefly on contention instead of failing on the first attempt.
func NewRedisResourceLocker(client *redis.Client, ttl, wait time.Duration) Locker {
	return &redisResourceLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
	}
}

const acquireRetryInterval = 50 * time.Millisecond

func (l *redisResourceLocker) WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:resource:%s", resourceID.String())
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *redisResourceLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire resource lock: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().Add(acquireRetryInterval).After(deadline) {
			return ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(acquireRetryInterval):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisResourceLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release resource lock: %w", err)
	}
	return nil
}
