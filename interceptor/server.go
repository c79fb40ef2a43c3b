package interceptor

import (
	"context"
	"errors"

	"github.com/gotomicro/ekit/bean/option"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"readygate"
)

// UnaryCall is one gRPC unary invocation routed through a gated service.
type UnaryCall struct {
	Ctx     context.Context
	Req     any
	Info    *grpc.UnaryServerInfo
	Handler grpc.UnaryHandler
}

// HandlerService is always ready and runs each call's handler on its own
// goroutine, resolving the returned Future with the handler's result.
func HandlerService() readygate.Service[*UnaryCall, any] {
	return handlerService{}
}

type handlerService struct{}

func (handlerService) PollReady(readygate.Waker) (readygate.Readiness, error) {
	return readygate.Ready, nil
}

func (handlerService) Call(_ context.Context, call *UnaryCall) *readygate.Future[any] {
	f := readygate.NewFuture[any]()
	go func() {
		f.Resolve(call.Handler(call.Ctx, call.Req))
	}()
	return f
}

// ServerInterceptorBuilder gates unary handlers behind a readiness-gated
// service, typically HandlerService wrapped in limiter layers. The service is
// owned by one request at a time for its check and invoke; the handler itself
// runs outside of that ownership.
type ServerInterceptorBuilder struct {
	svc        readygate.Service[*UnaryCall, any]
	owner      chan struct{}
	fullMethod string
}

func NewServerInterceptorBuilder(svc readygate.Service[*UnaryCall, any],
	opts ...option.Option[ServerInterceptorBuilder]) *ServerInterceptorBuilder {
	b := &ServerInterceptorBuilder{
		svc:   svc,
		owner: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithFullMethod only gates the given method, e.g. /user.v1.UserService/GetByID.
// Other methods go straight to their handlers.
func WithFullMethod(fullMethod string) option.Option[ServerInterceptorBuilder] {
	return func(b *ServerInterceptorBuilder) {
		b.fullMethod = fullMethod
	}
}

func (b *ServerInterceptorBuilder) BuildUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if b.fullMethod != "" && info.FullMethod != b.fullMethod {
			return handler(ctx, req)
		}
		f, err := b.dispatch(ctx, &UnaryCall{Ctx: ctx, Req: req, Info: info, Handler: handler})
		if err != nil {
			return nil, err
		}
		resp, err := f.Await(ctx)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, status.FromContextError(err).Err()
		}
		return resp, err
	}
}

func (b *ServerInterceptorBuilder) dispatch(ctx context.Context, call *UnaryCall) (*readygate.Future[any], error) {
	select {
	case b.owner <- struct{}{}:
	case <-ctx.Done():
		return nil, b.reject(call.Info, ctx.Err())
	}
	defer func() {
		<-b.owner
	}()
	if err := readygate.WaitReady(ctx, b.svc); err != nil {
		return nil, b.reject(call.Info, err)
	}
	return b.svc.Call(ctx, call), nil
}

func (b *ServerInterceptorBuilder) reject(info *grpc.UnaryServerInfo, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.Errorf(codes.ResourceExhausted, "readygate: %s not ready: %v", info.FullMethod, err)
	}
	log.WithError(err).WithField("method", info.FullMethod).Warn("Gated service failed readiness check")
	return status.Errorf(codes.Unavailable, "readygate: %s unavailable: %v", info.FullMethod, err)
}
