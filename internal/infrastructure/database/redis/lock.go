package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// releaseScript deletes the lock only when this owner still holds it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// Mutex is a best-effort distributed lock used to keep batch jobs (edge
// cleanup, registry refresh) single-flight across workers.
type Mutex struct {
	client *Client
	key    string
	owner  string
	ttl    time.Duration
}

// NewMutex creates a lock named key with the given TTL (default 1 minute).
func NewMutex(client *Client, key string, ttl time.Duration) *Mutex {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &Mutex{
		client: client,
		key:    "lock:" + key,
		owner:  uuid.NewString(),
		ttl:    ttl,
	}
}

// TryLock attempts a single acquisition without blocking.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.key, m.owner, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "lock acquisition failed")
	}
	return ok, nil
}

// Lock blocks until the lock is acquired or ctx is done.
func (m *Mutex) Lock(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "lock wait cancelled")
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock if this owner still holds it.
func (m *Mutex) Unlock(ctx context.Context) error {
	res, err := m.client.Eval(ctx, releaseScript, []string{m.key}, m.owner).Result()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock release failed")
	}
	if n, ok := res.(int64); !ok || n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// TTL reports the remaining lifetime of the lock key.
func (m *Mutex) TTL(ctx context.Context) (time.Duration, error) {
	return m.client.TTL(ctx, m.key).Result()
}
