package models

import (
	"encoding/json"
	"time"
)

// AuditLog is one immutable record of a task lifecycle event.
// EventID carries the CloudEvents envelope id; a unique index on it makes
// writes idempotent under at-least-once delivery.
type AuditLog struct {
	EventID   string
	EventType string
	TaskID    string
	UserID    string
	Action    string // created, updated, completed, deleted
	Sequence  int64
	Payload   json.RawMessage // full event data as received
	CreatedAt time.Time
}
