package echo

import (
	"context"
	"fmt"

	"readygate"
)

// Text is anything that converts to a string.
type Text interface {
	~string | ~[]byte | ~[]rune
}

type Request struct {
	payload string
}

func NewRequest[T Text](v T) Request {
	return Request{payload: string(v)}
}

// RequestOf builds a Request from the textual form of s.
func RequestOf(s fmt.Stringer) Request {
	return Request{payload: s.String()}
}

func (r Request) Payload() string {
	return r.payload
}

func (r Request) String() string {
	return r.payload
}

type Response struct {
	payload string
}

func NewResponse[T Text](v T) Response {
	return Response{payload: string(v)}
}

func (r Response) Payload() string {
	return r.payload
}

func (r Response) String() string {
	return r.payload
}

var _ readygate.Service[Request, Response] = Service{}

// Service is always ready and answers every request with its own payload.
type Service struct{}

func (Service) PollReady(readygate.Waker) (readygate.Readiness, error) {
	return readygate.Ready, nil
}

func (Service) Call(_ context.Context, req Request) *readygate.Future[Response] {
	return readygate.Resolved(Response{payload: req.payload}, nil)
}
