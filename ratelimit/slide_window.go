package ratelimit

import (
	"container/list"
	"sync"
	"time"

	"readygate"
)

var _ Limiter = (*SlideWindowLimiter)(nil)

type SlideWindowLimiter struct {
	// 上限
	maxRate int
	// 缓存窗口内每一个请求的时间戳
	queue     *list.List
	mutex     sync.Mutex
	interval  time.Duration
	now       func() time.Time
	wakeAfter func(d time.Duration, w readygate.Waker)
}

func NewSlideWindowLimiter(rate int, interval time.Duration) *SlideWindowLimiter {
	return &SlideWindowLimiter{
		maxRate:   rate,
		interval:  interval,
		queue:     list.New(),
		now:       time.Now,
		wakeAfter: wakeAfter,
	}
}

func (l *SlideWindowLimiter) Acquire(w readygate.Waker) (bool, error) {
	current := l.now()
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.queue.Len() < l.maxRate {
		l.queue.PushBack(current)
		return true, nil
	}
	// 慢路径，移除已经不在窗口里面的请求
	windowStartTime := current.Add(-l.interval)
	reqTime := l.queue.Front()
	for reqTime != nil && !reqTime.Value.(time.Time).After(windowStartTime) {
		l.queue.Remove(reqTime)
		reqTime = l.queue.Front()
	}
	if l.queue.Len() < l.maxRate {
		l.queue.PushBack(current)
		return true, nil
	}
	// 最早的请求滑出窗口的时候再唤醒
	front := l.queue.Front()
	if front == nil {
		// maxRate <= 0，窗口里面永远没有请求，过一个窗口再看
		l.wakeAfter(l.interval, w)
		return false, nil
	}
	l.wakeAfter(front.Value.(time.Time).Add(l.interval).Sub(current), w)
	return false, nil
}
