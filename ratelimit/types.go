package ratelimit

import (
	"context"

	"readygate"
	"readygate/internal/errs"
)

//go:generate mockgen -source=types.go -destination=../internal/mocks/limiter_mock.go -package=mocks

// Limiter hands out permits. Acquire never blocks: when no permit is
// available it returns false and w is woken once one may be.
// A Limiter may be shared by several services.
type Limiter interface {
	Acquire(w readygate.Waker) (bool, error)
}

var _ readygate.Service[any, any] = (*Service[any, any])(nil)

// Service only reports ready once it holds a permit from its Limiter.
// A permit is kept across Pending polls of the inner service and spent by Call.
type Service[Req, Resp any] struct {
	inner   readygate.Service[Req, Resp]
	limiter Limiter
	permit  bool
}

func NewService[Req, Resp any](inner readygate.Service[Req, Resp], limiter Limiter) *Service[Req, Resp] {
	return &Service[Req, Resp]{
		inner:   inner,
		limiter: limiter,
	}
}

func NewLayer[Req, Resp any](limiter Limiter) readygate.Layer[Req, Resp] {
	return func(inner readygate.Service[Req, Resp]) readygate.Service[Req, Resp] {
		return NewService(inner, limiter)
	}
}

func (s *Service[Req, Resp]) PollReady(w readygate.Waker) (readygate.Readiness, error) {
	if !s.permit {
		ok, err := s.limiter.Acquire(w)
		if err != nil {
			return readygate.Ready, err
		}
		if !ok {
			return readygate.Pending, nil
		}
		s.permit = true
	}
	return s.inner.PollReady(w)
}

func (s *Service[Req, Resp]) Call(ctx context.Context, req Req) *readygate.Future[Resp] {
	if !s.permit {
		panic(errs.ErrServiceNotReady)
	}
	s.permit = false
	return s.inner.Call(ctx, req)
}
