package ratelimit

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/google/uuid"
	"github.com/gotomicro/ekit/bean/option"
	log "github.com/sirupsen/logrus"

	"readygate"
)

//go:embed lua/slide_window.lua
var luaSlideWindow string

var _ Limiter = (*RedisSlideWindowLimiter)(nil)

// RedisSlideWindowLimiter is a sliding window shared by every process that
// uses the same key. Each evaluation runs on its own goroutine so Acquire
// never waits on redis: the first Acquire starts an evaluation and reports no
// permit, and the caller is woken when the answer arrives.
type RedisSlideWindowLimiter struct {
	key string
	// 窗口内的流量阈值
	maxRate int
	// 窗口大小
	interval      time.Duration
	timeout       time.Duration
	retryInterval time.Duration
	client        redis.Cmdable

	mutex   sync.Mutex
	pending *readygate.Future[bool]
}

func NewRedisSlideWindowLimiter(client redis.Cmdable, key string, maxRate int, interval time.Duration,
	opts ...option.Option[RedisSlideWindowLimiter]) *RedisSlideWindowLimiter {
	l := &RedisSlideWindowLimiter{
		client:        client,
		key:           key,
		maxRate:       maxRate,
		interval:      interval,
		timeout:       time.Second,
		retryInterval: interval / 10,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithRedisTimeout bounds a single script evaluation.
func WithRedisTimeout(timeout time.Duration) option.Option[RedisSlideWindowLimiter] {
	return func(l *RedisSlideWindowLimiter) {
		l.timeout = timeout
	}
}

// WithRetryInterval sets how long a limited caller waits before asking again.
func WithRetryInterval(interval time.Duration) option.Option[RedisSlideWindowLimiter] {
	return func(l *RedisSlideWindowLimiter) {
		l.retryInterval = interval
	}
}

func (l *RedisSlideWindowLimiter) Acquire(w readygate.Waker) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.pending == nil {
		l.pending = readygate.NewFuture[bool]()
		go l.limit(l.pending)
	}
	limited, ok, err := l.pending.Poll(w)
	if !ok {
		return false, nil
	}
	l.pending = nil
	if err != nil {
		return false, err
	}
	if limited {
		wakeAfter(l.retryInterval, w)
		return false, nil
	}
	return true, nil
}

func (l *RedisSlideWindowLimiter) limit(f *readygate.Future[bool]) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	limited, err := l.client.Eval(ctx, luaSlideWindow, []string{l.key},
		l.interval.Milliseconds(), l.maxRate, time.Now().UnixMilli(), uuid.NewString()).Bool()
	if err != nil {
		log.WithError(err).WithField("key", l.key).Warn("Failed to evaluate redis slide window")
	}
	f.Resolve(limited, err)
}
