// Package gate prevents a polling loop from relaunching an asynchronous
// operation on every tick.
//
// A Gate composes a perform.Session with a two-state progress flag, Idle and
// InFlight. Request launches the operation exactly once per cycle; Poll
// reports ready/not-ready without blocking; PollOrRequest combines both into
// the single call a cooperative loop makes each tick.
//
// # State machine
//
//	Idle --Request(op)--> InFlight     launch op via detached execution, once
//	InFlight --Request--> InFlight     no-op
//	InFlight --Poll: done--> Idle      result handed to the caller
//	InFlight --Poll: pending--> InFlight
//
// There is no terminal state; delivering a result rebinds the gate to a
// fresh session, so one gate serves a consumer for its whole lifetime.
//
// # Usage
//
//	store := perform.NewMemoryStore[string]()
//	g := gate.New(store)
//
//	// inside a frame/update loop:
//	value, ok, err := g.PollOrRequest(ctx, fetchGreeting)
//	if ok {
//	    render(value, err)
//	}
//	// !ok means not ready yet: draw a spinner and poll again next frame
//
// # Failure semantics
//
// Lock contention and a not-yet-visible slot are absorbed internally and
// reported as "not ready"; they resolve on a later tick and never surface as
// errors. The error returned alongside a ready value is the operation's own
// error. Cancellation of an in-flight operation is not supported: once
// launched, the gate returns to idle only by delivering the result.
package gate
