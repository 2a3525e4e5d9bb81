// Package runlock keeps two runs of the same job from loading the same table
// at once. The lock is a Redis key set with SET NX PX and a random token;
// release deletes the key only while the token still matches.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by Acquire when another run holds the lock.
var ErrHeld = errors.New("runlock: lock is held by another run")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker acquires per-job locks. A nil *Locker is valid and never blocks.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New parses redisURL and returns a Locker. An empty URL disables locking
// and returns a nil *Locker.
func New(redisURL string, ttl time.Duration) (*Locker, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("runlock: parse redis url: %w", err)
	}
	return NewWithClient(redis.NewClient(opts), ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(c *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: c, ttl: ttl}
}

// Lock is a held lock.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Key returns the Redis key for job.
func Key(job string) string { return "inventario:lock:" + job }

// Acquire takes the lock for job or returns ErrHeld. On a nil Locker it
// returns a no-op Lock.
func (l *Locker) Acquire(ctx context.Context, job string) (*Lock, error) {
	if l == nil {
		return &Lock{}, nil
	}
	lk := &Lock{client: l.client, key: Key(job), token: uuid.NewString()}
	ok, err := l.client.SetNX(ctx, lk.key, lk.token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("runlock: acquire %s: %w", lk.key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, lk.key)
	}
	return lk, nil
}

// Release deletes the key if this lock still owns it. Releasing an expired
// or stolen lock is not an error.
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil || lk.client == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Err(); err != nil {
		return fmt.Errorf("runlock: release %s: %w", lk.key, err)
	}
	return nil
}

// Close closes the Redis client.
func (l *Locker) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}
