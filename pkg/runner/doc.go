// Package runner provides the independent scheduler that completes detached
// operations for a result store.
//
// The perform package only requires an Executor, anything with a
// Go(func()) method, and defaults to bare goroutines. Runner is the
// production-shaped implementation: it tracks every scheduled function
// through an errgroup, recovers and logs panics so one bad operation cannot
// crash the process, optionally bounds concurrency, and drains cleanly on
// shutdown.
//
// # Usage
//
//	r := runner.New(runner.WithLimit(8))
//	store := perform.NewMemoryStore[string](perform.WithExecutor(r))
//
//	// ... application lifetime ...
//
//	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := r.Wait(shutdownCtx); err != nil {
//	    log.Printf("some detached operations did not finish: %v", err)
//	}
//
// Scheduling never blocks the caller, with or without a limit: work beyond
// the limit parks on its own goroutine until a slot frees up. That keeps a
// limited runner safe to wire into polling loops, at the cost of queued
// goroutines when launches outpace the limit for long stretches.
package runner
