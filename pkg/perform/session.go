package perform

import (
	"context"

	"github.com/google/uuid"
)

// Session binds one identifier to one store and re-exposes the store's
// operations scoped to that identifier. A Session is single-use with respect
// to take: once a completed result has been consumed, further calls report
// ErrNotFound.
type Session[T any] struct {
	id    uuid.UUID
	store Store[T]
}

// NewSession activates a fresh slot in store and returns the session bound
// to it. The slot is visible as soon as NewSession returns.
func NewSession[T any](ctx context.Context, store Store[T]) (*Session[T], error) {
	id, err := store.Activate(ctx)
	if err != nil {
		return nil, err
	}
	return &Session[T]{id: id, store: store}, nil
}

// NewSessionDetached activates a fresh slot via the store's detached form.
// The returned session is usable immediately, but its slot may not be
// queryable until the detached insert lands; TryTake reports ErrNotFound
// during that window and callers should treat it as "not ready yet".
func NewSessionDetached[T any](store Store[T]) *Session[T] {
	return &Session[T]{id: store.ActivateDetached(), store: store}
}

// ID returns the session's identifier.
func (s *Session[T]) ID() uuid.UUID {
	return s.id
}

// Run executes op on the calling goroutine and completes the session's slot
// before returning.
func (s *Session[T]) Run(ctx context.Context, op Operation[T]) error {
	return s.store.Run(ctx, s.id, op)
}

// RunDetached hands op to the store's executor and returns immediately.
func (s *Session[T]) RunDetached(op Operation[T]) {
	s.store.RunDetached(s.id, op)
}

// Take returns the slot's state, blocking until the store's lock is acquired.
func (s *Session[T]) Take(ctx context.Context) (State[T], error) {
	return s.store.Take(ctx, s.id)
}

// TryTake returns the slot's state without ever blocking the caller.
func (s *Session[T]) TryTake(ctx context.Context) (State[T], error) {
	return s.store.TryTake(ctx, s.id)
}
