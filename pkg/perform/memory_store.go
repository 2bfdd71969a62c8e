package perform

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// slot pairs a state with bookkeeping for the detached activation race.
// orphaned marks a result whose completion write landed before the
// activation insert became visible; the insert is still on its way.
type slot[T any] struct {
	state    State[T]
	orphaned bool
}

// MemoryStore implements Store with an in-process map guarded by a mutex.
// The lock is held only for single map operations; an operation never
// executes under it. All methods are safe for concurrent use, and TryTake
// never blocks, which makes the store usable from a cooperative
// single-threaded polling loop on one side and an independent scheduler on
// the other.
type MemoryStore[T any] struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]slot[T]
	consumed map[uuid.UUID]struct{}
	exec     Executor
	logger   *slog.Logger
}

// NewMemoryStore creates an empty in-memory result store. One store instance
// serves one value type; create separate instances for independent
// namespaces of the same type.
func NewMemoryStore[T any](opts ...StoreOption) *MemoryStore[T] {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore[T]{
		slots:    make(map[uuid.UUID]slot[T]),
		consumed: make(map[uuid.UUID]struct{}),
		exec:     o.exec,
		logger:   o.logger,
	}
}

// Activate registers a fresh identifier with an empty slot and returns it.
func (s *MemoryStore[T]) Activate(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()

	s.mu.Lock()
	s.slots[id] = slot[T]{state: Empty[T]()}
	s.mu.Unlock()

	return id, nil
}

// ActivateDetached registers a fresh identifier on the executor and returns
// it immediately. The slot may not be queryable until the detached insert
// lands; Take and TryTake report ErrNotFound during that window.
func (s *MemoryStore[T]) ActivateDetached() uuid.UUID {
	id := uuid.New()

	s.exec.Go(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// The result may have been written and consumed before this
		// insert landed; recreating the slot would resurrect a dead
		// identifier.
		if _, taken := s.consumed[id]; taken {
			delete(s.consumed, id)
			return
		}

		// A completion write may have landed first; never overwrite it.
		// It no longer races a pending insert, so clear the mark.
		if sl, ok := s.slots[id]; ok {
			if sl.orphaned {
				sl.orphaned = false
				s.slots[id] = sl
			}
			return
		}

		s.slots[id] = slot[T]{state: Empty[T]()}
	})

	return id
}

// Run executes op to completion on the calling goroutine and writes its
// outcome under id before returning.
func (s *MemoryStore[T]) Run(ctx context.Context, id uuid.UUID, op Operation[T]) error {
	if op == nil {
		return ErrNilOperation
	}

	value, err := op(ctx)
	return s.complete(id, value, err)
}

// RunDetached hands op to the executor and returns immediately. A failed
// completion write has no caller to report to, so it is logged instead.
func (s *MemoryStore[T]) RunDetached(id uuid.UUID, op Operation[T]) {
	if op == nil {
		return
	}

	s.exec.Go(func() {
		value, err := op(context.Background())
		if cerr := s.complete(id, value, err); cerr != nil {
			s.logger.Error("perform: detached completion write failed",
				slog.String("session_id", id.String()),
				slog.Any("error", cerr))
		}
	})
}

// complete performs the single permitted write of a slot's lifetime, from
// empty to done. An absent slot is tolerated: with detached activation the
// completion write may land before the activation insert becomes visible,
// and the write itself creates the slot in that case. A slot that already
// holds a result, or whose result was already consumed, is never written
// twice.
func (s *MemoryStore[T]) complete(id uuid.UUID, value T, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.consumed[id]; taken {
		return ErrSlotOccupied
	}

	existing, present := s.slots[id]
	if present && existing.state.IsDone() {
		return ErrSlotOccupied
	}

	s.slots[id] = slot[T]{state: Done(value, err), orphaned: !present}
	return nil
}

// Take returns the slot's state under id, blocking until the lock is
// acquired. A done state is removed from the store; an empty slot is left in
// place for the next poll. Cancellation is honored on entry; the lock itself
// guards only single map operations and cannot be interrupted mid-acquire.
func (s *MemoryStore[T]) Take(ctx context.Context, id uuid.UUID) (State[T], error) {
	if err := ctx.Err(); err != nil {
		return Empty[T](), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.takeLocked(id)
}

// TryTake behaves like Take but fails fast with ErrLocked instead of
// waiting for a contended lock.
func (s *MemoryStore[T]) TryTake(ctx context.Context, id uuid.UUID) (State[T], error) {
	if !s.mu.TryLock() {
		return Empty[T](), ErrLocked
	}
	defer s.mu.Unlock()

	return s.takeLocked(id)
}

func (s *MemoryStore[T]) takeLocked(id uuid.UUID) (State[T], error) {
	sl, ok := s.slots[id]
	if !ok {
		return Empty[T](), ErrNotFound
	}

	if sl.state.IsDone() {
		delete(s.slots, id)
		// An orphaned result still has an activation insert in flight;
		// leave a mark so the insert does not recreate the slot.
		if sl.orphaned {
			s.consumed[id] = struct{}{}
		}
	}

	return sl.state, nil
}

// Len reports the number of live slots. Intended for tests and diagnostics.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
