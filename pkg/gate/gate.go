package gate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/handoff/pkg/perform"
)

// Status is the gate's progress flag.
type Status string

const (
	// StatusIdle means no operation is outstanding; the next Request will
	// launch one.
	StatusIdle Status = "idle"

	// StatusInFlight means an operation has been launched and its result has
	// not been consumed yet; Request calls are no-ops until Poll delivers it.
	StatusInFlight Status = "in_flight"
)

func (s Status) String() string {
	return string(s)
}

// Gate guarantees at most one outstanding operation per logical consumer and
// gives polling code a simple ready/not-ready query. It composes a
// perform.Session with a two-state progress flag: Request launches the
// operation exactly once, Poll consumes the result when it arrives and arms
// the gate for the next Request.
//
// The gate's own mutex is held only for flag flips and never across a
// blocking store call, so Poll is safe inside a loop that must never stall.
// A Gate is reusable indefinitely; each delivered result rebinds it to a
// fresh session.
type Gate[T any] struct {
	mu      sync.Mutex
	status  Status
	store   perform.Store[T]
	session *perform.Session[T]
	logger  *slog.Logger
}

// New creates an idle gate over store.
func New[T any](store perform.Store[T], opts ...Option) *Gate[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Gate[T]{
		status: StatusIdle,
		store:  store,
		logger: o.logger,
	}
}

// Status returns the gate's current progress flag.
func (g *Gate[T]) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Request launches op exactly once: an idle gate activates a fresh session,
// hands op to the store's detached execution path, and flips to in-flight.
// Calling Request while in-flight is a no-op, so a polling loop may call it
// on every tick without relaunching the operation.
//
// Activation uses the detached form so Request never waits on the store's
// lock; the slot may lag the launch by a short visibility window, which Poll
// absorbs as "not ready yet". The launch itself happens after the gate's
// mutex is released, so a slow or saturated executor cannot stall a
// concurrent Poll.
func (g *Gate[T]) Request(op perform.Operation[T]) {
	if op == nil {
		return
	}

	g.mu.Lock()
	if g.status == StatusInFlight {
		g.mu.Unlock()
		g.logger.Debug("gate: request ignored, operation already in flight")
		return
	}
	sess := perform.NewSessionDetached(g.store)
	g.session = sess
	g.status = StatusInFlight
	g.mu.Unlock()

	sess.RunDetached(op)
}

// Poll asks "do you have a result yet?" without blocking. When the in-flight
// operation has completed, Poll consumes its outcome, returns it with
// ok=true, and flips the gate back to idle. In every other case (gate idle,
// result not yet written, store lock contended, activation not yet visible)
// Poll returns ok=false and the caller re-polls on its next tick.
//
// The returned error is the operation's own error, delivered alongside its
// value and only when ok is true; transient store conditions are absorbed
// and never surface here.
func (g *Gate[T]) Poll(ctx context.Context) (value T, ok bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var zero T

	if g.status != StatusInFlight {
		return zero, false, nil
	}

	state, terr := g.session.TryTake(ctx)
	if terr != nil {
		// Contention and a not-yet-visible slot are the expected steady
		// state while polling; both resolve on a later tick.
		return zero, false, nil
	}
	if !state.IsDone() {
		return zero, false, nil
	}

	g.status = StatusIdle
	g.session = nil
	return state.Value(), true, state.Err()
}

// PollOrRequest is the single call a cooperative polling loop makes each
// tick: it launches op if the gate is idle, then polls. The first tick after
// a result is delivered relaunches, so a loop that should run the operation
// only once must stop calling PollOrRequest once ok is true.
func (g *Gate[T]) PollOrRequest(ctx context.Context, op perform.Operation[T]) (value T, ok bool, err error) {
	g.Request(op)
	return g.Poll(ctx)
}
