package readygate

//go:generate mockgen -source=waker.go -destination=internal/mocks/waker_mock.go -package=mocks

// Waker is the token a service uses to tell its caller that a readiness
// check is worth repeating. Wakes may be spurious or duplicated; callers
// always check again.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function into a Waker.
type WakerFunc func()

func (f WakerFunc) Wake() {
	f()
}

// NoopWaker drops every wake-up.
var NoopWaker Waker = WakerFunc(func() {})

var _ Waker = (*ChanWaker)(nil)

// ChanWaker delivers wake-ups on a channel. Wake never blocks and wake-ups
// that arrive before the previous one was received are coalesced.
type ChanWaker struct {
	ch chan struct{}
}

func NewChanWaker() *ChanWaker {
	return &ChanWaker{ch: make(chan struct{}, 1)}
}

func (w *ChanWaker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// C returns the channel wake-ups are delivered on.
func (w *ChanWaker) C() <-chan struct{} {
	return w.ch
}
