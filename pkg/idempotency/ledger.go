// Package idempotency tracks processed event ids so at-least-once delivery
// does not cause duplicate side effects.
package idempotency

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Ledger records which event ids a consumer has already processed.
// MarkIfNew is the atomic check-and-record path; Seen and MarkSeen exist for
// consumers that must separate the check from the side effect.
type Ledger interface {
	// Seen reports whether id was already recorded.
	Seen(ctx context.Context, id string) (bool, error)
	// MarkSeen records id unconditionally.
	MarkSeen(ctx context.Context, id string) error
	// MarkIfNew atomically records id and reports true if it was new.
	MarkIfNew(ctx context.Context, id string) (bool, error)
}

// RedisLedger stores processed ids as Redis keys, shared by all instances of
// a consumer group. Entries are kept indefinitely.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger returns a ledger whose keys are namespaced by consumer,
// e.g. "processed:audit:<event-id>".
func NewRedisLedger(client *redis.Client, consumer string) *RedisLedger {
	return &RedisLedger{client: client, prefix: "processed:" + consumer + ":"}
}

func (l *RedisLedger) Seen(ctx context.Context, id string) (bool, error) {
	n, err := l.client.Exists(ctx, l.prefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: check %s: %w", id, err)
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkSeen(ctx context.Context, id string) error {
	if err := l.client.Set(ctx, l.prefix+id, "1", 0).Err(); err != nil {
		return fmt.Errorf("idempotency: mark %s: %w", id, err)
	}
	return nil
}

func (l *RedisLedger) MarkIfNew(ctx context.Context, id string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+id, "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: mark-if-new %s: %w", id, err)
	}
	return ok, nil
}

// MemoryLedger is a process-local ledger for tests and for consumers whose
// side effects are themselves per-process, like WebSocket broadcast.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]bool)}
}

func (l *MemoryLedger) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *MemoryLedger) MarkSeen(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = true
	return nil
}

func (l *MemoryLedger) MarkIfNew(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[id] {
		return false, nil
	}
	l.seen[id] = true
	return true, nil
}
