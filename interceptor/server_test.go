package interceptor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"readygate"
	"readygate/ratelimit"
)

type GetByIdReq struct {
	Id int64
}

type GetByIdResp struct {
	Msg string
}

const getById = "/user.v1.UserService/GetByID"

func TestServerInterceptorBuilder_BuildUnaryServerInterceptor(t *testing.T) {
	testCases := []struct {
		name     string
		svc      func() readygate.Service[*UnaryCall, any]
		opts     []func(b *ServerInterceptorBuilder)
		method   string
		timeout  time.Duration
		wantResp any
		wantCode codes.Code
		wantCnt  int64
	}{
		{
			name: "ready",
			svc: func() readygate.Service[*UnaryCall, any] {
				return HandlerService()
			},
			method:   getById,
			timeout:  time.Second,
			wantResp: &GetByIdResp{Msg: "user 1"},
			wantCnt:  1,
		},
		{
			name: "token produced",
			svc: func() readygate.Service[*UnaryCall, any] {
				l := ratelimit.NewTokenBucketLimiter(1, 5*time.Millisecond)
				t.Cleanup(func() { _ = l.Close() })
				return ratelimit.NewService(HandlerService(), l)
			},
			method:   getById,
			timeout:  time.Second,
			wantResp: &GetByIdResp{Msg: "user 1"},
			wantCnt:  1,
		},
		{
			name: "never ready",
			svc: func() readygate.Service[*UnaryCall, any] {
				l := ratelimit.NewTokenBucketLimiter(1, time.Hour)
				t.Cleanup(func() { _ = l.Close() })
				return ratelimit.NewService(HandlerService(), l)
			},
			method:   getById,
			timeout:  20 * time.Millisecond,
			wantCode: codes.ResourceExhausted,
		},
		{
			name: "limiter closed",
			svc: func() readygate.Service[*UnaryCall, any] {
				l := ratelimit.NewTokenBucketLimiter(1, time.Hour)
				_ = l.Close()
				return ratelimit.NewService(HandlerService(), l)
			},
			method:   getById,
			timeout:  time.Second,
			wantCode: codes.Unavailable,
		},
		{
			name: "other method",
			svc: func() readygate.Service[*UnaryCall, any] {
				l := ratelimit.NewTokenBucketLimiter(1, time.Hour)
				t.Cleanup(func() { _ = l.Close() })
				return ratelimit.NewService(HandlerService(), l)
			},
			opts:     []func(b *ServerInterceptorBuilder){WithFullMethod(getById)},
			method:   "/user.v1.UserService/Create",
			timeout:  time.Second,
			wantResp: &GetByIdResp{Msg: "user 1"},
			wantCnt:  1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var cnt int64
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				atomic.AddInt64(&cnt, 1)
				return &GetByIdResp{Msg: "user 1"}, nil
			}
			b := NewServerInterceptorBuilder(tc.svc())
			for _, opt := range tc.opts {
				opt(b)
			}
			interceptor := b.BuildUnaryServerInterceptor()

			ctx, cancel := context.WithTimeout(context.Background(), tc.timeout)
			defer cancel()
			resp, err := interceptor(ctx, &GetByIdReq{Id: 1}, &grpc.UnaryServerInfo{FullMethod: tc.method}, handler)
			assert.Equal(t, tc.wantCode, status.Code(err))
			assert.Equal(t, tc.wantResp, resp)
			assert.Equal(t, tc.wantCnt, atomic.LoadInt64(&cnt))
		})
	}
}

func TestServerInterceptorBuilder_Concurrent(t *testing.T) {
	l := ratelimit.NewTokenBucketLimiter(2, 2*time.Millisecond)
	defer l.Close()
	interceptor := NewServerInterceptorBuilder(ratelimit.NewService(HandlerService(), l)).BuildUnaryServerInterceptor()

	var cnt int64
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		atomic.AddInt64(&cnt, 1)
		return &GetByIdResp{Msg: "ok"}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	var eg errgroup.Group
	for i := 0; i < 10; i++ {
		id := int64(i)
		eg.Go(func() error {
			_, err := interceptor(ctx, &GetByIdReq{Id: id}, &grpc.UnaryServerInfo{FullMethod: getById}, handler)
			return err
		})
	}
	require.NoError(t, eg.Wait())
	assert.Equal(t, int64(10), atomic.LoadInt64(&cnt))
}

func TestServerInterceptorBuilder_CancelWhileHandling(t *testing.T) {
	interceptor := NewServerInterceptorBuilder(HandlerService()).BuildUnaryServerInterceptor()

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		close(started)
		<-release
		return &GetByIdResp{Msg: "too late"}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	resp, err := interceptor(ctx, &GetByIdReq{Id: 1}, &grpc.UnaryServerInfo{FullMethod: getById}, handler)
	assert.Nil(t, resp)
	assert.Equal(t, codes.Canceled, status.Code(err))
}
