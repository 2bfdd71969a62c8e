package perform

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// completeScript performs the single permitted slot write atomically:
// it refuses to overwrite a slot that already holds a result (a consumed
// marker counts, it carries done=true) and creates the slot when the
// detached activation insert has not landed yet.
var completeScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	local ok, decoded = pcall(cjson.decode, cur)
	if ok and decoded.done then
		return 0
	end
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// takeScript returns the slot's payload, mirroring MemoryStore's take
// semantics: empty slots stay in place for the next poll. A completed result
// is not deleted outright but replaced by a short-lived consumed marker
// (ARGV[1], expiring after ARGV[2] ms) so that a detached activation insert
// arriving after the take cannot recreate the slot. Already-consumed slots
// read as absent.
var takeScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return false
end
local ok, decoded = pcall(cjson.decode, cur)
if ok and decoded.taken then
	return false
end
if ok and decoded.done then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
end
return cur
`)

// slotEnvelope is the JSON wire form of a slot. The operation's error
// survives only as its message; callers needing typed errors should fold
// them into the value type. Taken marks a consumed slot whose key briefly
// survives as a tombstone.
type slotEnvelope struct {
	Done  bool            `json:"done"`
	Taken bool            `json:"taken,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Err   string          `json:"error,omitempty"`
}

// consumedTTL bounds how long a consumed marker outlives its slot. It only
// needs to cover the window in which a detached activation insert for the
// same identifier can still arrive.
const consumedTTL = time.Minute

// RedisStore implements Store on a Redis backend so results can be handed
// off between processes. There is no process-local lock, so ErrLocked is
// never returned and TryTake coincides with Take; "non-blocking" here means
// a single bounded round-trip, which pollers should cap with a short
// context deadline. Slots carry a TTL so nothing outlives its handoff
// window.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	exec   Executor
	logger *slog.Logger
}

// NewRedisStore creates a result store on an established Redis client.
// keyPrefix namespaces this store's slots; ttl bounds a slot's lifetime
// (zero disables expiry).
func NewRedisStore[T any](client *redis.Client, keyPrefix string, ttl time.Duration, opts ...StoreOption) *RedisStore[T] {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if keyPrefix == "" {
		keyPrefix = "perform"
	}
	return &RedisStore[T]{
		client: client,
		prefix: keyPrefix,
		ttl:    ttl,
		exec:   o.exec,
		logger: o.logger,
	}
}

func (s *RedisStore[T]) key(id uuid.UUID) string {
	return s.prefix + ":" + id.String()
}

// Activate registers a fresh identifier with an empty slot.
func (s *RedisStore[T]) Activate(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()

	payload, err := json.Marshal(slotEnvelope{Done: false})
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.client.SetNX(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return uuid.Nil, errors.Join(ErrStoreUnavailable, err)
	}

	return id, nil
}

// ActivateDetached registers a fresh identifier on the executor and returns
// it immediately. The slot is not queryable until the insert lands.
func (s *RedisStore[T]) ActivateDetached() uuid.UUID {
	id := uuid.New()

	s.exec.Go(func() {
		payload, err := json.Marshal(slotEnvelope{Done: false})
		if err == nil {
			// SetNX so neither a completion write that landed first nor
			// the consumed marker left by a take is overwritten. Once the
			// marker expires the slot TTL bounds any insert that is still
			// somehow in flight.
			err = s.client.SetNX(context.Background(), s.key(id), payload, s.ttl).Err()
		}
		if err != nil {
			s.logger.Error("perform: detached activation failed",
				slog.String("session_id", id.String()),
				slog.Any("error", err))
		}
	})

	return id
}

// Run executes op on the calling goroutine and writes its outcome before
// returning.
func (s *RedisStore[T]) Run(ctx context.Context, id uuid.UUID, op Operation[T]) error {
	if op == nil {
		return ErrNilOperation
	}

	value, err := op(ctx)
	return s.complete(ctx, id, value, err)
}

// RunDetached hands op to the executor and returns immediately.
func (s *RedisStore[T]) RunDetached(id uuid.UUID, op Operation[T]) {
	if op == nil {
		return
	}

	s.exec.Go(func() {
		ctx := context.Background()
		value, err := op(ctx)
		if cerr := s.complete(ctx, id, value, err); cerr != nil {
			s.logger.Error("perform: detached completion write failed",
				slog.String("session_id", id.String()),
				slog.Any("error", cerr))
		}
	})
}

func (s *RedisStore[T]) complete(ctx context.Context, id uuid.UUID, value T, opErr error) error {
	env := slotEnvelope{Done: true}
	if opErr != nil {
		env.Err = opErr.Error()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	env.Value = raw

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	written, err := completeScript.Run(ctx, s.client, []string{s.key(id)}, payload, s.ttl.Milliseconds()).Int()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if written == 0 {
		return ErrSlotOccupied
	}
	return nil
}

// Take returns the slot's state under id. A completed result is retired
// atomically with the read, leaving a short-lived consumed marker behind;
// an empty slot stays in place. Later takes of the same identifier report
// ErrNotFound whether they hit the marker or its expiry.
func (s *RedisStore[T]) Take(ctx context.Context, id uuid.UUID) (State[T], error) {
	marker, err := json.Marshal(slotEnvelope{Done: true, Taken: true})
	if err != nil {
		return Empty[T](), err
	}

	payload, err := takeScript.Run(ctx, s.client, []string{s.key(id)}, marker, consumedTTL.Milliseconds()).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Empty[T](), ErrNotFound
		}
		return Empty[T](), errors.Join(ErrStoreUnavailable, err)
	}

	var env slotEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Empty[T](), err
	}

	if !env.Done {
		return Empty[T](), nil
	}

	var value T
	if len(env.Value) > 0 {
		if err := json.Unmarshal(env.Value, &value); err != nil {
			return Empty[T](), err
		}
	}

	var opErr error
	if env.Err != "" {
		opErr = errors.New(env.Err)
	}

	return Done(value, opErr), nil
}

// TryTake is identical to Take: the Redis backend has no process-local lock
// to contend on.
func (s *RedisStore[T]) TryTake(ctx context.Context, id uuid.UUID) (State[T], error) {
	return s.Take(ctx, id)
}
