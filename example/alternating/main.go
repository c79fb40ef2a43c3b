package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"readygate"
	"readygate/alternating"
	"readygate/echo"
)

type options struct {
	Callers  int    `long:"callers" default:"2" description:"number of independent callers, each owning its own services"`
	Requests int    `long:"requests" default:"3" description:"requests sent by every caller"`
	LogLevel string `long:"log-level" default:"info" description:"log level"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("Failed to set log level. Valid log levels are:", log.AllLevels)
	}
	log.SetLevel(level)

	eg, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < opts.Callers; i++ {
		caller := i
		eg.Go(func() error {
			return run(ctx, caller, opts.Requests)
		})
	}
	if err := eg.Wait(); err != nil {
		log.WithError(err).Fatal("Caller failed")
	}
}

func run(ctx context.Context, caller, requests int) error {
	svc := alternating.New()
	echoSvc := echo.Service{}
	w := readygate.NewChanWaker()
	for i := 0; i < requests; i++ {
		polls := 0
		for {
			polls++
			r, err := svc.PollReady(w)
			if err != nil {
				return err
			}
			if r == readygate.Ready {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.C():
			}
		}
		if _, err := svc.Call(ctx, alternating.Request{}).Await(ctx); err != nil {
			return err
		}
		resp, err := readygate.Oneshot[echo.Request, echo.Response](ctx, echoSvc,
			echo.NewRequest(fmt.Sprintf("caller %d request %d", caller, i)))
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"caller": caller,
			"polls":  polls,
		}).Info(resp.String())
	}
	return nil
}
