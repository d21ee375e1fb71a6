package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockNotObtained is returned when a lock stays contended past the retry budget.
var ErrLockNotObtained = errors.New("lock not obtained")

// RedisLocker serializes critical sections across API replicas.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewRedisLocker builds a distributed locker. ttl bounds how long a crashed
// holder can block others.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 100),
	}
}

// Lock blocks until key is held or the retry budget runs out.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("locker: release failed")
		}
	}, nil
}

// LocalLocker is the single-process fallback used when Redis is not configured.
// A key's entry lives only while someone holds or waits for it.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.keys[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.keys[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.ch
				l.done(key, lk)
			})
		}, nil
	case <-ctx.Done():
		l.done(key, lk)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) done(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.keys, key)
	}
}
