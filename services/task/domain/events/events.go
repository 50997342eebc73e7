// Package events defines the topics, event types, and payloads the task
// bounded context publishes, plus the Builder that stamps envelopes with
// per-task sequence numbers.
package events

import (
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// Topics the task service publishes to.
const (
	// TopicTaskEvents carries lifecycle events consumed by the audit logger
	// and the recurring-task generator.
	TopicTaskEvents = "task-events"

	// TopicReminders carries schedule and cancel commands for the reminder
	// scheduler.
	TopicReminders = "reminders"

	// TopicTaskUpdates carries real-time sync events for connected WebSocket
	// clients.
	TopicTaskUpdates = "task-updates"
)

// CloudEvents type strings.
const (
	TypeTaskCreated   = "com.todo.task.created"
	TypeTaskUpdated   = "com.todo.task.updated"
	TypeTaskCompleted = "com.todo.task.completed"
	TypeTaskDeleted   = "com.todo.task.deleted"

	TypeReminderSchedule = "com.todo.reminder.schedule"
	TypeReminderCancel   = "com.todo.reminder.cancel"

	TypeTaskSync = "com.todo.task.sync"
)

// TaskSnapshot is the full task state embedded as the payload of lifecycle
// events. Consumers never have to read the task table to act on an event.
type TaskSnapshot struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	Tags              []string   `json:"tags"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	RecurringPattern  string     `json:"recurring_pattern"`
	RecurringInterval int        `json:"recurring_interval"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	// ChangedFields lists what an update touched. Only set on
	// com.todo.task.updated.
	ChangedFields []string `json:"changed_fields,omitempty"`
}

// Snapshot converts a domain task into its event representation.
func Snapshot(t *models.Task) TaskSnapshot {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskSnapshot{
		ID:                t.ID.String(),
		UserID:            t.UserID,
		Title:             t.Title.String(),
		Description:       t.Description,
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		Tags:              tags,
		DueDate:           t.DueDate,
		RecurringPattern:  string(t.RecurringPattern),
		RecurringInterval: t.RecurringInterval,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// syncFields maps changed field names to their new values for sync events.
// A nil changed list returns the full task state.
func syncFields(t *models.Task, changed []string) map[string]any {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	full := map[string]any{
		"title":              t.Title.String(),
		"description":        t.Description,
		"status":             string(t.Status),
		"priority":           string(t.Priority),
		"tags":               tags,
		"due_date":           t.DueDate,
		"recurring_pattern":  string(t.RecurringPattern),
		"recurring_interval": t.RecurringInterval,
		"updated_at":         t.UpdatedAt,
	}
	if changed == nil {
		return full
	}
	delta := make(map[string]any, len(changed))
	for _, name := range changed {
		if v, ok := full[name]; ok {
			delta[name] = v
		}
	}
	return delta
}

// TaskEventData is the data of com.todo.task.* lifecycle events on the
// task-events topic. IdempotencyKey equals the envelope id; consumers use
// either for deduplication.
type TaskEventData struct {
	TaskID         string       `json:"task_id"`
	UserID         string       `json:"user_id"`
	Sequence       int64        `json:"sequence"`
	IdempotencyKey string       `json:"idempotency_key"`
	Payload        TaskSnapshot `json:"payload"`
}

// ReminderEventData is the data of com.todo.reminder.* commands on the
// reminders topic. ReminderTime and the delivery fields are only set on
// schedule commands.
type ReminderEventData struct {
	TaskID               string     `json:"task_id"`
	UserID               string     `json:"user_id"`
	Title                string     `json:"title,omitempty"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	ReminderTime         *time.Time `json:"reminder_time,omitempty"`
	NotificationChannels []string   `json:"notification_channels,omitempty"`
	UserEmail            string     `json:"user_email,omitempty"`
	DeviceTokens         []string   `json:"device_tokens,omitempty"`
	IdempotencyKey       string     `json:"idempotency_key"`
}

// SyncEventData is the data of com.todo.task.sync events on the task-updates
// topic, broadcast to the owner's WebSocket connections. ChangedFields maps
// field names to their new values: the full task state for created and
// deleted events, only the touched fields for updates.
type SyncEventData struct {
	TaskID         string         `json:"task_id"`
	UserID         string         `json:"user_id"`
	Action         string         `json:"action"` // created, updated, completed, deleted
	Sequence       int64          `json:"sequence"`
	IdempotencyKey string         `json:"idempotency_key"`
	ChangedFields  map[string]any `json:"changed_fields"`
}
