// Package cache holds a small generic TTL cache for read-mostly lookups.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// sweepEvery is how many writes pass between scans for expired entries.
const sweepEvery = 256

type item[V any] struct {
	value   V
	expires time.Time
}

// Store is an in-process TTL cache. Concurrent misses on one key share a
// single load, and a load that races an Invalidate is not stored.
type Store[V any] struct {
	ttl   time.Duration
	clock func() time.Time
	group singleflight.Group

	mu     sync.Mutex
	items  map[string]item[V]
	gen    map[string]uint64
	writes int
}

// NewStore returns a cache whose entries live for ttl. A ttl of zero or less
// keeps entries until they are invalidated.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		ttl:   ttl,
		clock: time.Now,
		items: make(map[string]item[V]),
		gen:   make(map[string]uint64),
	}
}

func (s *Store[V]) fresh(it item[V], now time.Time) bool {
	return s.ttl <= 0 || now.Before(it.expires)
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if ok && s.fresh(it, s.clock()) {
		return it.value, true
	}
	if ok {
		delete(s.items, key)
	}
	var zero V
	return zero, false
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(key, value)
}

// store requires s.mu.
func (s *Store[V]) store(key string, value V) {
	now := s.clock()
	s.items[key] = item[V]{value: value, expires: now.Add(s.ttl)}

	s.writes++
	if s.ttl > 0 && s.writes%sweepEvery == 0 {
		for k, it := range s.items {
			if !s.fresh(it, now) {
				delete(s.items, k)
			}
		}
	}
}

// Invalidate drops key. Loads already running for it finish but their result
// is returned to their callers only.
func (s *Store[V]) Invalidate(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.gen[key]++
	s.mu.Unlock()
	s.group.Forget(key)
}

// GetOrLoad returns the cached value or calls load once for all concurrent
// callers of key. Errors are never cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	var zero V
	if load == nil {
		return zero, errors.New("cache: load func is required")
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	res, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.Lock()
		startGen := s.gen[key]
		s.mu.Unlock()

		v, err := load(ctx)
		if err != nil {
			return zero, err
		}

		s.mu.Lock()
		if s.gen[key] == startGen {
			s.store(key, v)
		}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Len reports the number of stored entries, expired or not.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
