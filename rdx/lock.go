package rdx

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrLockNotAcquired is returned when a lock cannot be acquired
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when trying to release a lock not held
	ErrLockNotHeld = errors.New("lock not held")
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker serializes work on a key across every API replica.
type Locker struct {
	conn    *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

func NewLocker(conn *redis.Client, logger *zap.Logger) *Locker {
	return &Locker{
		conn:    conn,
		prefix:  "lock:",
		ttl:     30 * time.Second,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

func (l *Locker) acquire(ctx context.Context, key, value string) error {
	ok, err := l.conn.SetNX(ctx, l.prefix+key, value, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotAcquired
	}
	return nil
}

// Lock retries with capped exponential backoff until the lock is held, the
// timeout passes or ctx ends. The returned func releases the lock.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	value := uuid.New().String()
	deadline := time.Now().Add(l.timeout)
	backoff := 10 * time.Millisecond

	for {
		err := l.acquire(ctx, key, value)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff = min(backoff*2, 500*time.Millisecond)
		}
	}

	return func() {
		// Release even when the request context is already cancelled.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.release(relCtx, key, value); err != nil {
			l.logger.Warn("release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (l *Locker) release(ctx context.Context, key, value string) error {
	result, err := releaseScript.Run(ctx, l.conn, []string{l.prefix + key}, value).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}
