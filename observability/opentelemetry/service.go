package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"readygate"
	"readygate/observability"
)

const instrumentationName = "readygate/observability/opentelemetry"

const (
	attrService      = attribute.Key("readygate.service")
	attrPendingPolls = attribute.Key("readygate.pending_polls")
	attrAddress      = attribute.Key("address")
)

type ServiceBuilder struct {
	name    string
	tracer  trace.Tracer
	address string
}

// NewServiceBuilder falls back to the global tracer provider when tracer is nil.
func NewServiceBuilder(name string, tracer trace.Tracer) *ServiceBuilder {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return &ServiceBuilder{
		name:    name,
		tracer:  tracer,
		address: observability.GetOutboundIP(),
	}
}

var _ readygate.Service[any, any] = (*Service[any, any])(nil)

// Service opens a span for every Call. The span records how many Pending
// polls preceded the grant and ends when the call's Future resolves.
type Service[Req, Resp any] struct {
	inner   readygate.Service[Req, Resp]
	name    string
	tracer  trace.Tracer
	address string
	pending int
}

func NewService[Req, Resp any](b *ServiceBuilder, inner readygate.Service[Req, Resp]) *Service[Req, Resp] {
	return &Service[Req, Resp]{
		inner:   inner,
		name:    b.name,
		tracer:  b.tracer,
		address: b.address,
	}
}

func NewLayer[Req, Resp any](b *ServiceBuilder) readygate.Layer[Req, Resp] {
	return func(inner readygate.Service[Req, Resp]) readygate.Service[Req, Resp] {
		return NewService(b, inner)
	}
}

func (s *Service[Req, Resp]) PollReady(w readygate.Waker) (readygate.Readiness, error) {
	r, err := s.inner.PollReady(w)
	if err == nil && r == readygate.Pending {
		s.pending++
	}
	return r, err
}

func (s *Service[Req, Resp]) Call(ctx context.Context, req Req) *readygate.Future[Resp] {
	ctx, span := s.tracer.Start(ctx, s.name+"/call", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attrService.String(s.name),
		attrPendingPolls.Int(s.pending),
		attrAddress.String(s.address),
	)
	s.pending = 0
	return readygate.Then(s.inner.Call(ctx, req), func(resp Resp, err error) (Resp, error) {
		if err != nil {
			span.SetStatus(codes.Error, "call failed")
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
		return resp, err
	})
}
