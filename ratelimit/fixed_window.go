package ratelimit

import (
	"sync"
	"time"

	"readygate"
)

var _ Limiter = (*FixWindowLimiter)(nil)

type FixWindowLimiter struct {
	// 窗口大小
	interval time.Duration
	// 在 interval 内最多允许 maxRate 个请求
	maxRate     int64
	cnt         int64
	windowStart time.Time
	mutex       sync.Mutex
	now         func() time.Time
	// wakeAfter 到了下一个窗口再唤醒调用方
	wakeAfter func(d time.Duration, w readygate.Waker)
}

// NewFixWindowLimiter
// interval => 窗口多大
// maxRate 这个窗口内，能够执行多少个请求
func NewFixWindowLimiter(interval time.Duration, maxRate int64) *FixWindowLimiter {
	return &FixWindowLimiter{
		interval:  interval,
		maxRate:   maxRate,
		now:       time.Now,
		wakeAfter: wakeAfter,
	}
}

func (l *FixWindowLimiter) Acquire(w readygate.Waker) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	current := l.now()
	// 换窗口了
	if !current.Before(l.windowStart.Add(l.interval)) {
		l.windowStart = current
		l.cnt = 0
	}
	if l.cnt < l.maxRate {
		l.cnt++
		return true, nil
	}
	l.wakeAfter(l.windowStart.Add(l.interval).Sub(current), w)
	return false, nil
}

func wakeAfter(d time.Duration, w readygate.Waker) {
	time.AfterFunc(d, w.Wake)
}
