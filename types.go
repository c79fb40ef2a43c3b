package readygate

import (
	"context"

	"readygate/internal/errs"
)

// ErrServiceNotReady is the value a Service panics with when Call is made
// without an outstanding readiness grant.
var ErrServiceNotReady = errs.ErrServiceNotReady

// Readiness is the non-error outcome of a readiness check.
type Readiness uint8

const (
	// Pending means the service has no capacity right now. It has arranged for
	// the supplied Waker to be woken when it is worth checking again.
	Pending Readiness = iota
	// Ready means the caller holds exactly one grant to Call.
	Ready
)

func (r Readiness) String() string {
	switch r {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Service is a two-phase, readiness-gated request handler.
//
// PollReady never blocks. A non-nil error reports that the service has failed.
// Otherwise Ready grants the caller one Call, and Pending means no Call may be
// made until a later PollReady returns Ready; before returning Pending the
// service must arrange for w to be woken. w must not be nil.
//
// Call must only follow a PollReady that returned Ready on the same instance,
// with no other Call in between. A Call without a grant is a programming error
// and implementations panic with ErrServiceNotReady instead of returning an
// error. The returned Future may be resolved already or resolve later; a
// started call cannot be cancelled.
//
// A Service is owned by one caller at a time and is not safe for concurrent use.
type Service[Req, Resp any] interface {
	PollReady(w Waker) (Readiness, error)
	Call(ctx context.Context, req Req) *Future[Resp]
}

// ServiceFunc adapts a function into an always ready Service.
type ServiceFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f ServiceFunc[Req, Resp]) PollReady(Waker) (Readiness, error) {
	return Ready, nil
}

func (f ServiceFunc[Req, Resp]) Call(ctx context.Context, req Req) *Future[Resp] {
	return Resolved(f(ctx, req))
}

// Layer decorates a Service.
type Layer[Req, Resp any] func(Service[Req, Resp]) Service[Req, Resp]

// Stack wraps svc with layers, the first layer being the outermost.
func Stack[Req, Resp any](svc Service[Req, Resp], layers ...Layer[Req, Resp]) Service[Req, Resp] {
	for i := len(layers) - 1; i >= 0; i-- {
		svc = layers[i](svc)
	}
	return svc
}
