// Package registry tracks live WebSocket connections per user.
package registry

import (
	"sync"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

// Conn is the write side of a WebSocket connection. Implementations must be
// safe for concurrent writers.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry is an in-memory map of user id to open connections. A user may
// hold several connections (multiple tabs, devices); a broadcast reaches
// all of them.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
	log   logger.Logger
}

// New returns an empty Registry.
func New(log logger.Logger) *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{}), log: log}
}

// Add registers a connection for a user.
func (r *Registry) Add(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[c] = struct{}{}
}

// Remove drops a connection. Removing a connection that was already dropped
// is a no-op.
func (r *Registry) Remove(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// Broadcast sends v to every connection the user holds and returns how many
// writes succeeded. Connections that fail to take the write are closed and
// dropped from the registry, so a dead client is evicted by the first
// broadcast that hits it.
func (r *Registry) Broadcast(userID string, v any) int {
	r.mu.RLock()
	targets := make([]Conn, 0, len(r.conns[userID]))
	for c := range r.conns[userID] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.WriteJSON(v); err != nil {
			r.log.Warn("sync: dropping dead connection", "user_id", userID, "error", err)
			_ = c.Close()
			r.Remove(userID, c)
			continue
		}
		sent++
	}
	return sent
}

// ConnectionCount returns the number of open connections for one user.
func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// TotalConnectionCount returns the number of open connections across all
// users.
func (r *Registry) TotalConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.conns {
		total += len(set)
	}
	return total
}
