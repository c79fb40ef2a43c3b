package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readygate"
)

func TestSlideWindowLimiter_Acquire(t *testing.T) {
	start := time.Unix(1000, 0)
	clock := &fakeClock{now: start}
	recorder := &wakeRecorder{}
	l := NewSlideWindowLimiter(2, time.Second)
	l.now = clock.Now
	l.wakeAfter = recorder.wakeAfter

	testCases := []struct {
		name      string
		now       time.Time
		wantOK    bool
		wantDelay []time.Duration
		wantLen   int
	}{
		{name: "first", now: start, wantOK: true, wantLen: 1},
		{name: "second", now: start.Add(400 * time.Millisecond), wantOK: true, wantLen: 2},
		{
			name:      "window full",
			now:       start.Add(600 * time.Millisecond),
			wantDelay: []time.Duration{400 * time.Millisecond},
			wantLen:   2,
		},
		{
			// 第一个请求滑出了窗口
			name:      "oldest expired",
			now:       start.Add(time.Second),
			wantOK:    true,
			wantDelay: []time.Duration{400 * time.Millisecond},
			wantLen:   2,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock.now = tc.now
			ok, err := l.Acquire(readygate.NoopWaker)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantDelay, recorder.delays)
			assert.Equal(t, tc.wantLen, l.queue.Len())
		})
	}
}

func TestSlideWindowLimiter_NoCapacity(t *testing.T) {
	testCases := []struct {
		name      string
		rate      int
		wantDelay []time.Duration
	}{
		{name: "zero rate", rate: 0, wantDelay: []time.Duration{time.Second}},
		{name: "negative rate", rate: -1, wantDelay: []time.Duration{time.Second}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &wakeRecorder{}
			l := NewSlideWindowLimiter(tc.rate, time.Second)
			l.wakeAfter = recorder.wakeAfter
			ok, err := l.Acquire(readygate.NoopWaker)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, tc.wantDelay, recorder.delays)
			assert.Equal(t, 0, l.queue.Len())
		})
	}
}
