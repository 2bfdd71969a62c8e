package perform_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/handoff/pkg/perform"
)

// stubExecutor queues detached functions so tests control exactly when (and
// in what order) detached inserts and completion writes land.
type stubExecutor struct {
	mu  sync.Mutex
	fns []func()
}

func (e *stubExecutor) Go(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fns = append(e.fns, fn)
}

// Release runs the i-th queued function synchronously.
func (e *stubExecutor) Release(i int) {
	e.mu.Lock()
	fn := e.fns[i]
	e.mu.Unlock()
	fn()
}

func TestMemoryStore_Activate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty slot before any run", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		state, err := store.TryTake(ctx, id)
		require.NoError(t, err)
		assert.False(t, state.IsDone())
	})

	t.Run("empty slot survives repeated polling", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		for range 5 {
			state, err := store.TryTake(ctx, id)
			require.NoError(t, err)
			assert.False(t, state.IsDone())
		}
		assert.Equal(t, 1, store.Len())
	})

	t.Run("concurrent activations never collide", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[int]()

		const n = 100
		ids := make(chan uuid.UUID, n)
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := store.Activate(ctx)
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[uuid.UUID]struct{}, n)
		for id := range ids {
			seen[id] = struct{}{}
		}
		assert.Len(t, seen, n)
		assert.Equal(t, n, store.Len())
	})
}

func TestMemoryStore_Take(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown identifier", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		_, err := store.Take(ctx, uuid.New())
		assert.ErrorIs(t, err, perform.ErrNotFound)
	})

	t.Run("single delivery", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		err = store.Run(ctx, id, func(ctx context.Context) (string, error) {
			return "hello", nil
		})
		require.NoError(t, err)

		state, err := store.Take(ctx, id)
		require.NoError(t, err)
		require.True(t, state.IsDone())
		assert.Equal(t, "hello", state.Value())
		assert.NoError(t, state.Err())

		// The entry is gone after the delivering take.
		_, err = store.Take(ctx, id)
		assert.ErrorIs(t, err, perform.ErrNotFound)
		_, err = store.TryTake(ctx, id)
		assert.ErrorIs(t, err, perform.ErrNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = store.Take(canceled, id)
		assert.ErrorIs(t, err, context.Canceled)

		// The slot is untouched and still deliverable.
		require.NoError(t, store.Run(ctx, id, func(ctx context.Context) (string, error) {
			return "kept", nil
		}))
		state, err := store.Take(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "kept", state.Value())
	})

	t.Run("operation error travels inside the state", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[int]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		opErr := errors.New("remote unavailable")
		err = store.Run(ctx, id, func(ctx context.Context) (int, error) {
			return 0, opErr
		})
		require.NoError(t, err)

		state, err := store.Take(ctx, id)
		require.NoError(t, err)
		require.True(t, state.IsDone())
		assert.ErrorIs(t, state.Err(), opErr)
	})
}

func TestMemoryStore_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nil operation", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, store.Run(ctx, id, nil), perform.ErrNilOperation)
	})

	t.Run("second completion write is rejected", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		op := func(ctx context.Context) (string, error) { return "first", nil }
		require.NoError(t, store.Run(ctx, id, op))

		err = store.Run(ctx, id, func(ctx context.Context) (string, error) { return "second", nil })
		assert.ErrorIs(t, err, perform.ErrSlotOccupied)

		// The first write wins.
		state, err := store.Take(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "first", state.Value())
	})

	t.Run("detached run completes asynchronously", func(t *testing.T) {
		t.Parallel()
		store := perform.NewMemoryStore[string]()

		id, err := store.Activate(ctx)
		require.NoError(t, err)

		store.RunDetached(id, func(ctx context.Context) (string, error) {
			return "detached", nil
		})

		require.Eventually(t, func() bool {
			state, err := store.TryTake(ctx, id)
			return err == nil && state.IsDone() && state.Value() == "detached"
		}, time.Second, 5*time.Millisecond)
	})
}

func TestMemoryStore_DetachedActivation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("slot invisible until the insert lands", func(t *testing.T) {
		t.Parallel()
		exec := &stubExecutor{}
		store := perform.NewMemoryStore[string](perform.WithExecutor(exec))

		id := store.ActivateDetached()

		_, err := store.TryTake(ctx, id)
		assert.ErrorIs(t, err, perform.ErrNotFound)

		exec.Release(0)

		state, err := store.TryTake(ctx, id)
		require.NoError(t, err)
		assert.False(t, state.IsDone())
	})

	t.Run("completion landing first is not overwritten", func(t *testing.T) {
		t.Parallel()
		exec := &stubExecutor{}
		store := perform.NewMemoryStore[string](perform.WithExecutor(exec))

		id := store.ActivateDetached()
		store.RunDetached(id, func(ctx context.Context) (string, error) {
			return "raced", nil
		})

		// Completion write (queued second) lands before the activation insert.
		exec.Release(1)
		exec.Release(0)

		state, err := store.TryTake(ctx, id)
		require.NoError(t, err)
		require.True(t, state.IsDone())
		assert.Equal(t, "raced", state.Value())
		assert.Equal(t, 0, store.Len())
	})

	t.Run("insert landing after the take does not revive the slot", func(t *testing.T) {
		t.Parallel()
		exec := &stubExecutor{}
		store := perform.NewMemoryStore[string](perform.WithExecutor(exec))

		id := store.ActivateDetached()
		store.RunDetached(id, func(ctx context.Context) (string, error) {
			return "raced", nil
		})

		// Completion write lands first and the consumer takes the result
		// while the activation insert is still queued.
		exec.Release(1)

		state, err := store.TryTake(ctx, id)
		require.NoError(t, err)
		require.True(t, state.IsDone())
		assert.Equal(t, "raced", state.Value())

		// The late insert must not bring the consumed identifier back.
		exec.Release(0)

		_, err = store.TryTake(ctx, id)
		assert.ErrorIs(t, err, perform.ErrNotFound)
		_, err = store.Take(ctx, id)
		assert.ErrorIs(t, err, perform.ErrNotFound)
		assert.Equal(t, 0, store.Len())
	})
}
