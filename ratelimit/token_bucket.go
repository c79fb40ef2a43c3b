package ratelimit

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"readygate"
	"readygate/internal/errs"
)

var _ Limiter = (*TokenBucketLimiter)(nil)

// TokenBucketLimiter 基于令牌桶的限流
// 每隔 interval 产生一个令牌，最多缓存 buffer 个
type TokenBucketLimiter struct {
	tokens    chan struct{}
	close     chan struct{}
	closeOnce sync.Once

	mutex   sync.Mutex
	closed  bool
	waiters []readygate.Waker
}

func NewTokenBucketLimiter(buffer int, interval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		tokens: make(chan struct{}, buffer),
		close:  make(chan struct{}),
	}
	go l.produce(interval)
	return l
}

func (l *TokenBucketLimiter) produce(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.close:
			return
		case <-ticker.C:
			select {
			case l.tokens <- struct{}{}:
			default:
				// 桶满了，丢弃
			}
			l.wakeAll()
		}
	}
}

func (l *TokenBucketLimiter) Acquire(w readygate.Waker) (bool, error) {
	l.mutex.Lock()
	// closed 和登记 waker 要在同一把锁下面，否则 Close 之后登记的 waker 永远不会被唤醒
	if l.closed {
		l.mutex.Unlock()
		return false, errs.ErrLimiterClosed
	}
	if l.take() {
		l.mutex.Unlock()
		return true, nil
	}
	// 之后产生的令牌一定会在 wakeAll 里面看到这个 waker
	l.waiters = append(l.waiters, w)
	l.mutex.Unlock()
	return false, nil
}

func (l *TokenBucketLimiter) take() bool {
	select {
	case <-l.tokens:
		return true
	default:
		return false
	}
}

func (l *TokenBucketLimiter) wakeAll() {
	l.mutex.Lock()
	waiters := l.waiters
	l.waiters = nil
	l.mutex.Unlock()
	for _, w := range waiters {
		w.Wake()
	}
}

// Close stops producing tokens. Waiting callers are woken and see ErrLimiterClosed.
func (l *TokenBucketLimiter) Close() error {
	l.mutex.Lock()
	l.closed = true
	l.mutex.Unlock()
	l.closeOnce.Do(func() {
		close(l.close)
		log.Debug("Token bucket limiter closed")
	})
	l.wakeAll()
	return nil
}
