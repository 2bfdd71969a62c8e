// Package perform implements the result-handoff store at the heart of the
// handoff library: a concurrency-safe registry mapping an opaque session
// identifier to the state of exactly one asynchronous operation.
//
// The package exists for consumers that live inside a cooperative,
// single-threaded update loop (a frame-based UI, a game tick, a TUI render
// loop) and therefore must never block, while the operations they launch run
// on an independent scheduler. The store is the meeting point: the scheduler
// writes one completed result per identifier, the loop polls for it with a
// non-blocking take.
//
// # Architecture
//
//   - Store is the single interface with the capability set activate / run /
//     take / try_take, plus detached forms of activate and run.
//   - MemoryStore is the canonical implementation: a mutex-guarded map, with
//     TryTake built on a non-blocking lock acquisition.
//   - RedisStore hands results off between processes over go-redis, with the
//     same slot lifecycle enforced by server-side scripts.
//   - Session binds one identifier to one store so call sites don't thread
//     identifiers around.
//
// Stores are explicitly constructed and injectable; nothing in the package
// is process-global. One store instance serves one value type.
//
// # Slot lifecycle
//
// A slot is created Empty by activation, written exactly once by the
// completion of a run, and removed by the take that observes the completed
// result. Identifiers are uuid.UUID values and are never reused. An empty
// slot observed by take is reported as "not ready" and left in place.
//
// Detached forms return before their write is visible. Callers using
// ActivateDetached must tolerate a short window where the slot is not yet
// queryable; the completion write tolerates the same window by creating the
// slot itself when it lands first.
//
// # Usage
//
//	store := perform.NewMemoryStore[string]()
//
//	session, err := perform.NewSession(ctx, store)
//	if err != nil {
//	    // handle error
//	}
//
//	session.RunDetached(func(ctx context.Context) (string, error) {
//	    resp, err := fetchRemote(ctx)
//	    return resp, err
//	})
//
//	// each tick of the polling loop:
//	state, err := session.TryTake(ctx)
//	switch {
//	case errors.Is(err, perform.ErrLocked):
//	    // contended, retry next tick
//	case err != nil:
//	    // handle error
//	case state.IsDone():
//	    use(state.Value(), state.Err())
//	}
//
// Most consumers should not drive a Session by hand: the gate package wraps
// one in an Idle/InFlight state machine that prevents relaunching the
// operation on every tick.
//
// # Error Handling
//
// Store-level failures are sentinel errors (ErrLocked, ErrNotFound,
// ErrSlotOccupied) checked with errors.Is. ErrLocked and a not-yet-visible
// ErrNotFound are transient and expected under normal operation; an
// operation's own error is not a store failure and travels inside the
// completed State.
package perform
