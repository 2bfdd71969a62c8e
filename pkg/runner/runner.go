package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Runner is an explicit detached-execution scheduler: it satisfies the
// store's Executor seam while adding goroutine bookkeeping, panic
// containment, and an optional concurrency limit. Use one Runner per
// composition root and drain it on shutdown with Wait.
type Runner struct {
	eg       *errgroup.Group
	sem      chan struct{}
	logger   *slog.Logger
	closed   atomic.Bool
	waitOnce sync.Once
	done     chan struct{}
}

// New creates a Runner. With no options it runs every function on its own
// goroutine, unbounded.
func New(opts ...Option) *Runner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Runner{
		eg:     &errgroup.Group{},
		logger: o.logger,
		done:   make(chan struct{}),
	}
	if o.limit > 0 {
		r.sem = make(chan struct{}, o.limit)
	}
	return r
}

// Go schedules fn on the runner and returns without waiting. The concurrency
// limit is enforced inside the scheduled goroutine, which parks until a slot
// frees up, so a saturated runner never blocks the caller. A panicking fn is
// recovered and logged with its stack so one operation cannot take down the
// process. Calls after Close are dropped with a log line; the Executor
// contract is fire-and-forget, so there is no error to return.
func (r *Runner) Go(fn func()) {
	if fn == nil {
		return
	}
	if r.closed.Load() {
		r.logger.Warn("runner: closed, dropping operation")
		return
	}

	r.eg.Go(func() error {
		if r.sem != nil {
			r.sem <- struct{}{}
			defer func() { <-r.sem }()
		}
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				r.logger.Error("runner: recovered panic in detached operation",
					slog.Any("panic", rec),
					slog.String("stack", string(buf[:n])))
			}
		}()
		fn()
		return nil
	})
}

// Close stops the runner from accepting new work. Already-scheduled
// functions keep running; use Wait to drain them.
func (r *Runner) Close() {
	r.closed.Store(true)
}

// Wait closes the runner and blocks until every scheduled function has
// returned, or until ctx is done. Safe to call more than once.
func (r *Runner) Wait(ctx context.Context) error {
	r.Close()

	r.waitOnce.Do(func() {
		go func() {
			_ = r.eg.Wait()
			close(r.done)
		}()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("runner: drain interrupted: %w", ctx.Err())
	}
}
