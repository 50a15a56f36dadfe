package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"adminhub/internal/middleware"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Dispatcher fans deliveries out over a bounded number of workers.
type Dispatcher struct {
	workers int
}

// NewDispatcher returns a dispatcher running at most workers deliveries at once.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Dispatcher{workers: workers}
}

// Outcome aggregates the results of one dispatch.
type Outcome struct {
	Delivered int
	Failed    int
	// Skipped counts deliveries never attempted because ctx was done.
	// They are included in Failed.
	Skipped int
}

// Dispatch calls send for every index in [0, n). A failed or panicking send
// counts as a failure and never stops the others. Once ctx is done the
// remaining deliveries are counted as failed without being attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, n int, send func(ctx context.Context, i int) error) Outcome {
	var delivered, failed atomic.Int64
	skipped := 0
	var g errgroup.Group
	g.SetLimit(d.workers)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			skipped = n - i
			failed.Add(int64(skipped))
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("delivery panicked: %v", r)
				}
				if err != nil {
					failed.Add(1)
					middleware.Logger.WarnContext(ctx, "delivery failed", slog.Int("index", i), slog.String("error", err.Error()))
					return
				}
				delivered.Add(1)
			}()
			return send(ctx, i)
		})
	}
	_ = g.Wait()

	return Outcome{Delivered: int(delivered.Load()), Failed: int(failed.Load()), Skipped: skipped}
}
