// Package state tracks reminder lifecycle records in Redis.
package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/cache"
)

// Reminder statuses.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusSent      = "sent"
)

const (
	reminderKeyPrefix = "reminder"

	// ReminderTTL keeps records around long enough for debugging delivered
	// and cancelled reminders.
	ReminderTTL = 7 * 24 * time.Hour
)

// Reminder is the denormalized reminder record stored as a Redis hash.
// Key format: "reminder:{taskID}".
type Reminder struct {
	TaskID       string    `json:"task_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	RemindAt     time.Time `json:"remind_at"`
	SuccessCount int       `json:"success_count"`
	TotalCount   int       `json:"total_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store provides structured read/write operations for reminder records.
type Store struct {
	client *cache.RedisClient
}

// NewStore creates a Store backed by the given RedisClient.
func NewStore(r *cache.RedisClient) *Store {
	return &Store{client: r}
}

// Get retrieves a reminder record by task ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (s *Store) Get(ctx context.Context, taskID string) (*Reminder, error) {
	vals, err := s.client.Client().HGetAll(ctx, s.key(taskID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reminder state get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	remindAt, err := time.Parse(time.RFC3339Nano, vals["remind_at"])
	if err != nil {
		return nil, fmt.Errorf("reminder state parse remind_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("reminder state parse updated_at: %w", err)
	}
	successCount, _ := strconv.Atoi(vals["success_count"])
	totalCount, _ := strconv.Atoi(vals["total_count"])

	return &Reminder{
		TaskID:       vals["task_id"],
		UserID:       vals["user_id"],
		Title:        vals["title"],
		Status:       vals["status"],
		RemindAt:     remindAt,
		SuccessCount: successCount,
		TotalCount:   totalCount,
		UpdatedAt:    updatedAt,
	}, nil
}

// Save writes a reminder record as a Redis hash with a 7-day TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (s *Store) Save(ctx context.Context, rec *Reminder) error {
	key := s.key(rec.TaskID)
	pipe := s.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"task_id", rec.TaskID,
		"user_id", rec.UserID,
		"title", rec.Title,
		"status", rec.Status,
		"remind_at", rec.RemindAt.UTC().Format(time.RFC3339Nano),
		"success_count", strconv.Itoa(rec.SuccessCount),
		"total_count", strconv.Itoa(rec.TotalCount),
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, ReminderTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reminder state save: %w", err)
	}
	return nil
}

// SetStatus updates only the status and timestamp of an existing record.
func (s *Store) SetStatus(ctx context.Context, taskID, status string) error {
	if err := s.client.Client().HSet(ctx, s.key(taskID),
		"status", status,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return fmt.Errorf("reminder state set status: %w", err)
	}
	return nil
}

// RecordDelivery marks a reminder sent and stores how many notification
// channels succeeded out of how many were attempted.
func (s *Store) RecordDelivery(ctx context.Context, taskID string, successes, total int) error {
	if err := s.client.Client().HSet(ctx, s.key(taskID),
		"status", StatusSent,
		"success_count", strconv.Itoa(successes),
		"total_count", strconv.Itoa(total),
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return fmt.Errorf("reminder state record delivery: %w", err)
	}
	return nil
}

// key builds the Redis key: "reminder:{taskID}"
func (s *Store) key(taskID string) string {
	return fmt.Sprintf("%s:%s", reminderKeyPrefix, taskID)
}
