package perform

import "context"

// Operation is a unit of asynchronous work producing a value of type T.
// The context is the execution context of whichever goroutine drives the
// operation: the caller's own context for inline runs, a background context
// for detached runs.
type Operation[T any] func(ctx context.Context) (T, error)

// State is the content of a single store slot. A slot is either still empty
// (the operation has been registered but has not completed) or done, holding
// the value and error the operation produced. Exactly one of the two holds at
// any instant for a given identifier.
type State[T any] struct {
	value T
	err   error
	done  bool
}

// Empty returns the state of a freshly activated slot: registered, no result yet.
func Empty[T any]() State[T] {
	return State[T]{}
}

// Done returns the state of a completed slot holding the operation's outcome.
func Done[T any](value T, err error) State[T] {
	return State[T]{value: value, err: err, done: true}
}

// IsDone reports whether the slot holds a completed result.
func (s State[T]) IsDone() bool {
	return s.done
}

// Value returns the completed operation's value, or the zero value while the
// slot is still empty.
func (s State[T]) Value() T {
	return s.value
}

// Err returns the error the completed operation produced, if any.
// It is always nil while the slot is still empty.
func (s State[T]) Err() error {
	return s.err
}
