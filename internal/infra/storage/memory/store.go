package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pgfinder/internal/infra/storage/kv"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a process-local kv.Store. Apply holds the lock for the whole batch.
type Store struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{items: make(map[string]entry), now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	if !ok || s.expired(e) {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Apply(ctx context.Context, ops []kv.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, op := range ops {
		if op.Delete {
			delete(s.items, op.Key)
			continue
		}
		e := entry{value: append([]byte(nil), op.Value...)}
		if op.TTL > 0 {
			e.expiresAt = now.Add(op.TTL)
		}
		s.items[op.Key] = e
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Keys lists live keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k, e := range s.items {
		if !s.expired(e) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

var _ kv.Store = (*Store)(nil)
