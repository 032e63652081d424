package oauth

import (
	"context"
	"time"

	"github.com/geocoder89/wellbot/internal/cache"
	"github.com/google/uuid"
)

const StateTTL = 10 * time.Minute

// StateStore keeps login states between the redirect to the provider and
// the callback. Consume succeeds at most once per state.
type StateStore interface {
	Put(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) error
}

// NewState returns a fresh random state and records it in store.
func NewState(ctx context.Context, store StateStore) (string, error) {
	state := uuid.NewString()
	if err := store.Put(ctx, state); err != nil {
		return "", err
	}
	return state, nil
}

type MemoryStateStore struct {
	c *cache.Cache
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = StateTTL
	}
	return &MemoryStateStore{c: cache.New(ttl)}
}

func (s *MemoryStateStore) Put(_ context.Context, state string) error {
	// drop stale states so abandoned logins do not pile up
	s.c.Sweep()
	s.c.Set(state, struct{}{})
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	if _, ok := s.c.Take(state); !ok {
		return ErrInvalidState
	}
	return nil
}

// KV is the subset of the redis client the state store needs.
type KV interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, bool, error)
}

type RedisStateStore struct {
	kv  KV
	ttl time.Duration
}

func NewRedisStateStore(kv KV, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = StateTTL
	}
	return &RedisStateStore{kv: kv, ttl: ttl}
}

func stateKey(state string) string {
	return "wellbot:oauth_state:" + state
}

func (s *RedisStateStore) Put(ctx context.Context, state string) error {
	return s.kv.SetWithTTL(ctx, stateKey(state), "1", s.ttl)
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	_, ok, err := s.kv.Take(ctx, stateKey(state))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}
