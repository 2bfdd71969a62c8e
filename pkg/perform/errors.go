package perform

import "errors"

var (
	// ErrLocked indicates the store's lock was contended during a non-blocking
	// acquisition. Transient: the caller should retry on its next tick.
	ErrLocked = errors.New("perform: store lock contended")

	// ErrNotFound indicates the identifier has no slot in the store. It is
	// transient when a detached activation has not become visible yet, and a
	// programmer error when the slot was already taken.
	ErrNotFound = errors.New("perform: unknown session identifier")

	// ErrSlotOccupied indicates an attempt to complete a slot that already
	// holds a result. A slot is written at most once per lifetime.
	ErrSlotOccupied = errors.New("perform: slot already holds a result")

	// ErrNilOperation indicates a nil operation was passed to a run call.
	ErrNilOperation = errors.New("perform: nil operation")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	// Only returned by stores with an out-of-process backend.
	ErrStoreUnavailable = errors.New("perform: store unavailable")

	// ErrInvalidConfig indicates the environment could not be parsed into a
	// RedisConfig.
	ErrInvalidConfig = errors.New("perform: invalid redis store configuration")
)
