package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// TaskPriority orders tasks by importance.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// RecurringPattern describes how a completed task regenerates.
type RecurringPattern string

const (
	RecurringNone    RecurringPattern = "none"
	RecurringDaily   RecurringPattern = "daily"
	RecurringWeekly  RecurringPattern = "weekly"
	RecurringMonthly RecurringPattern = "monthly"
	RecurringYearly  RecurringPattern = "yearly"
)

// Valid reports whether r is a known pattern.
func (r RecurringPattern) Valid() bool {
	switch r {
	case RecurringNone, RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

// Task is the core aggregate for this bounded context.
type Task struct {
	ID                uuid.UUID
	UserID            string // owner scope, always filter by this in queries
	Title             TaskTitle
	Description       string
	Status            TaskStatus
	Priority          TaskPriority
	Tags              []string
	DueDate           *time.Time
	RecurringPattern  RecurringPattern
	RecurringInterval int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MaxDescriptionLength bounds the free-text description field.
const MaxDescriptionLength = 2000

// NewTask constructs a valid pending Task with generated ID and current timestamps.
// Zero-value priority and recurring pattern get their defaults (medium, none).
func NewTask(userID string, title TaskTitle) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		Status:            StatusPending,
		Priority:          PriorityMedium,
		Tags:              []string{},
		RecurringPattern:  RecurringNone,
		RecurringInterval: 1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsCompleted reports whether the task has been marked done.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsRecurring reports whether completing the task should generate a successor.
func (t *Task) IsRecurring() bool {
	return t.RecurringPattern != "" && t.RecurringPattern != RecurringNone
}

// Touch updates the modification timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
