package perform

import (
	"context"

	"github.com/google/uuid"
)

// Store is the result-handoff registry: a concurrency-safe mapping from
// session identifier to the state of exactly one asynchronous operation.
//
// A slot's lifecycle is strict: created Empty by Activate or
// ActivateDetached, written exactly once by the completion of a Run or
// RunDetached call, and destroyed by the Take or TryTake call that observes
// the completed result. Identifiers are never reused.
type Store[T any] interface {
	// Activate registers a fresh identifier with an empty slot and returns it.
	// The slot is visible to other callers as soon as Activate returns.
	Activate(ctx context.Context) (uuid.UUID, error)

	// ActivateDetached registers a fresh identifier like Activate, but the
	// insert happens on the store's executor and the identifier is returned
	// immediately. Callers must tolerate a short window where the slot is not
	// yet queryable (Take and TryTake report ErrNotFound until it lands).
	ActivateDetached() uuid.UUID

	// Run executes op on the calling goroutine and writes its outcome under
	// id before returning. The returned error reports store-level failures
	// only; the operation's own error is delivered inside the completed
	// state. Completing a slot that already holds a result is rejected with
	// ErrSlotOccupied.
	Run(ctx context.Context, id uuid.UUID, op Operation[T]) error

	// RunDetached hands op to the store's executor and returns immediately.
	// The completion write happens whenever the executor finishes the
	// operation, asynchronously with respect to the caller.
	RunDetached(id uuid.UUID, op Operation[T])

	// Take returns the slot's state, blocking until the store's lock is
	// acquired. A completed result is removed from the store: the first Take
	// that observes a done state consumes it, and every later call for the
	// same identifier reports ErrNotFound. An empty slot is reported as such
	// and left in place.
	Take(ctx context.Context, id uuid.UUID) (State[T], error)

	// TryTake behaves like Take but never blocks the calling goroutine: if
	// the store's lock is contended it fails fast with ErrLocked. This is
	// the only operation safe to call from a cooperative polling loop.
	TryTake(ctx context.Context, id uuid.UUID) (State[T], error)
}

// Executor runs detached work. It is the seam between the store and whatever
// scheduler completes operations: the default executor spawns one goroutine
// per call, while runner.Runner adds bookkeeping, panic containment, and a
// concurrency limit.
//
// Go must return without waiting for fn, and without blocking on capacity:
// detached activation and launch sit on polling-loop call paths that must
// not stall. An executor that needs to bound concurrency should park the
// overflow internally, the way runner.Runner does.
type Executor interface {
	Go(fn func())
}

// goExecutor is the default Executor: one goroutine per detached call.
type goExecutor struct{}

func (goExecutor) Go(fn func()) {
	go fn()
}
