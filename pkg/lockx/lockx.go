// Package lockx provides a small Redis lock so that periodic jobs run on a
// single instance at a time.
package lockx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired is returned when another holder owns the key.
	ErrNotAcquired = errors.New("lockx: lock already held")
	// ErrNotHeld is returned when releasing a lock that expired or was taken over.
	ErrNotHeld = errors.New("lockx: lock not held")
)

// Only delete the key if we still own it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker acquires keys with SET NX PX and an owner token.
type Locker struct {
	client redis.Cmdable
	prefix string
}

func New(client redis.Cmdable, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lock is a held key.
type Lock struct {
	Key   string
	token string
}

// TryLock acquires key for ttl without waiting.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	full := l.prefix + key
	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lockx: acquire %s: %w", full, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &Lock{Key: full, token: token}, nil
}

// Unlock releases lk if it is still ours.
func (l *Locker) Unlock(ctx context.Context, lk *Lock) error {
	if lk == nil {
		return ErrNotHeld
	}

	n, err := l.client.Eval(ctx, releaseScript, []string{lk.Key}, lk.token).Int64()
	if err != nil {
		return fmt.Errorf("lockx: release %s: %w", lk.Key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// Acquire is TryLock shaped for callers that only need a release func.
// ok is false, with a nil error, when someone else holds the key.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lk, err := l.TryLock(ctx, key, ttl)
	if errors.Is(err, ErrNotAcquired) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return func(ctx context.Context) error { return l.Unlock(ctx, lk) }, true, nil
}
