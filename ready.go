package readygate

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// WaitReady polls svc until it grants a Call. Between polls it parks on a
// ChanWaker handed to the service, so a service that reports Pending without
// ever waking leaves WaitReady parked until ctx is done.
func WaitReady[Req, Resp any](ctx context.Context, svc Service[Req, Resp]) error {
	w := NewChanWaker()
	for polls := 1; ; polls++ {
		r, err := svc.PollReady(w)
		if err != nil {
			log.WithError(err).WithField("polls", polls).Debug("Service failed readiness check")
			return fmt.Errorf("readygate: service failed readiness check: %w", err)
		}
		if r == Ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.C():
		}
	}
}

// Oneshot waits for svc to become ready, calls it once and awaits the response.
func Oneshot[Req, Resp any](ctx context.Context, svc Service[Req, Resp], req Req) (Resp, error) {
	if err := WaitReady(ctx, svc); err != nil {
		var zero Resp
		return zero, err
	}
	return svc.Call(ctx, req).Await(ctx)
}
