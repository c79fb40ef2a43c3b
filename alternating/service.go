// Package alternating provides a service with one unit of capacity that is
// replenished on every other readiness check. Callers that assume immediate
// availability instead of looping on PollReady break against it.
package alternating

import (
	"context"

	"readygate"
	"readygate/internal/errs"
)

type Request struct{}

type Response struct{}

var _ readygate.Service[Request, Response] = (*Service)(nil)

// Service flips its readiness on every PollReady, starting from not ready.
// The zero value is ready to use.
type Service struct {
	// ready means the next PollReady grants a Call
	ready bool
	// granted means a Ready poll has not been consumed by Call yet
	granted bool
}

func New() *Service {
	return &Service{}
}

func (s *Service) PollReady(w readygate.Waker) (readygate.Readiness, error) {
	if s.ready {
		s.ready = false
		s.granted = true
		return readygate.Ready, nil
	}
	s.ready = true
	// a Pending answer takes back whatever the previous poll granted
	s.granted = false
	w.Wake()
	return readygate.Pending, nil
}

// Call panics with ErrServiceNotReady unless the preceding PollReady returned Ready.
func (s *Service) Call(_ context.Context, _ Request) *readygate.Future[Response] {
	if !s.granted {
		panic(errs.ErrServiceNotReady)
	}
	s.granted = false
	s.ready = false
	return readygate.Resolved(Response{}, nil)
}
