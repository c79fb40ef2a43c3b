package prometheus

import (
	"context"
	"time"

	"readygate"
)

const (
	outcomePending = "pending"
	outcomeReady   = "ready"
	outcomeError   = "error"
)

var _ readygate.Service[any, any] = (*Service[any, any])(nil)

// Service records every readiness outcome and every call of the wrapped service.
type Service[Req, Resp any] struct {
	inner     readygate.Service[Req, Resp]
	name      string
	collector *Collector
}

func NewService[Req, Resp any](name string, inner readygate.Service[Req, Resp], c *Collector) *Service[Req, Resp] {
	return &Service[Req, Resp]{
		inner:     inner,
		name:      name,
		collector: c,
	}
}

func NewLayer[Req, Resp any](name string, c *Collector) readygate.Layer[Req, Resp] {
	return func(inner readygate.Service[Req, Resp]) readygate.Service[Req, Resp] {
		return NewService(name, inner, c)
	}
}

func (s *Service[Req, Resp]) PollReady(w readygate.Waker) (readygate.Readiness, error) {
	r, err := s.inner.PollReady(w)
	outcome := outcomeReady
	switch {
	case err != nil:
		outcome = outcomeError
	case r == readygate.Pending:
		outcome = outcomePending
	}
	s.collector.polls.WithLabelValues(s.name, outcome).Inc()
	return r, err
}

func (s *Service[Req, Resp]) Call(ctx context.Context, req Req) *readygate.Future[Resp] {
	active := s.collector.active.WithLabelValues(s.name)
	active.Inc()
	startTime := time.Now()
	return readygate.Then(s.inner.Call(ctx, req), func(resp Resp, err error) (Resp, error) {
		active.Dec()
		s.collector.responses.WithLabelValues(s.name).Observe(float64(time.Since(startTime).Milliseconds()))
		if err != nil {
			s.collector.errCnt.WithLabelValues(s.name).Inc()
		}
		return resp, err
	})
}
