package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// SequenceAllocator hands out monotonically increasing sequence numbers per
// key. Events for the same task carry consecutive numbers so consumers can
// order them; numbers across different tasks are unrelated.
type SequenceAllocator interface {
	Next(ctx context.Context, key string) (int64, error)
}

// MemorySequence allocates sequence numbers from process memory. Counters
// reset on restart, so it is only suitable for tests and single-process
// development. Each key advances on its own atomic counter; the lock only
// guards the map, so allocations for different tasks never serialize on a
// shared counter.
type MemorySequence struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
}

// NewMemorySequence returns an empty in-memory allocator.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{counters: make(map[string]*atomic.Int64)}
}

// Next returns the next sequence number for key, starting at 1.
func (s *MemorySequence) Next(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	c, ok := s.counters[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if c, ok = s.counters[key]; !ok {
			c = new(atomic.Int64)
			s.counters[key] = c
		}
		s.mu.Unlock()
	}
	return c.Add(1), nil
}

// RedisSequence allocates sequence numbers with Redis INCR, making them
// durable and consistent across API instances.
type RedisSequence struct {
	client *redis.Client
	prefix string
}

// NewRedisSequence returns an allocator that stores counters under
// "seq:<key>" in the given Redis instance.
func NewRedisSequence(client *redis.Client) *RedisSequence {
	return &RedisSequence{client: client, prefix: "seq:"}
}

// Next atomically increments and returns the counter for key.
func (s *RedisSequence) Next(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("events: next sequence for %s: %w", key, err)
	}
	return n, nil
}
