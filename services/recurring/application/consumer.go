// Package application contains the recurring-task generator consumer.
package application

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/idempotency"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/recurring/client"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/recurring/nextdate"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// TaskCreator is the slice of the task API client the generator needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, userID string, req client.CreateTaskRequest) error
}

// Consumer watches task lifecycle events and creates the next occurrence
// when a recurring task is completed.
//
// The successor goes through the task API rather than straight into the
// table, so it gets the same validation and emits the same created events
// as a user-made task. The event id is marked processed only after the
// create succeeds; failures nack for redelivery. Duplicate deliveries after
// a successful create are skipped by the ledger, so completing a task
// generates exactly one successor.
type Consumer struct {
	tasks  TaskCreator
	ledger idempotency.Ledger
	log    logger.Logger
}

// NewConsumer returns a recurring-task generator consumer.
func NewConsumer(tasks TaskCreator, ledger idempotency.Ledger, log logger.Logger) *Consumer {
	return &Consumer{tasks: tasks, ledger: ledger, log: log}
}

// Handle processes one message from the task-events topic.
func (c *Consumer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := events.ParseEnvelope(msg.Payload)
	if err != nil {
		c.log.WarnContext(ctx, "recurring: dropping malformed event", "error", err)
		return nil
	}

	if env.Type != taskevents.TypeTaskCompleted {
		return nil
	}

	var data taskevents.TaskEventData
	if err := env.DecodeData(&data); err != nil {
		c.log.WarnContext(ctx, "recurring: dropping undecodable event",
			"event_id", env.ID, "error", err)
		return nil
	}

	pattern := models.RecurringPattern(data.Payload.RecurringPattern)
	if pattern == "" || pattern == models.RecurringNone {
		return nil
	}

	seen, err := c.ledger.Seen(ctx, env.ID)
	if err != nil {
		return fmt.Errorf("recurring: check ledger: %w", err)
	}
	if seen {
		c.log.DebugContext(ctx, "recurring: duplicate event skipped", "event_id", env.ID)
		return nil
	}

	if err := c.generate(ctx, data.Payload); err != nil {
		return err
	}

	if err := c.ledger.MarkSeen(ctx, env.ID); err != nil {
		c.log.WarnContext(ctx, "recurring: mark processed failed", "event_id", env.ID, "error", err)
	}
	return nil
}

func (c *Consumer) generate(ctx context.Context, snap taskevents.TaskSnapshot) error {
	if snap.DueDate == nil {
		c.log.WarnContext(ctx, "recurring: completed task has no due date, skipping",
			"task_id", snap.ID)
		return nil
	}

	pattern := models.RecurringPattern(snap.RecurringPattern)
	nextDue, err := nextdate.Next(*snap.DueDate, pattern, snap.RecurringInterval)
	if err != nil {
		c.log.WarnContext(ctx, "recurring: cannot compute next due date",
			"task_id", snap.ID, "pattern", snap.RecurringPattern, "error", err)
		return nil
	}

	req := client.CreateTaskRequest{
		Title:             snap.Title,
		Description:       snap.Description,
		Priority:          snap.Priority,
		Tags:              snap.Tags,
		DueDate:           &nextDue,
		RecurringPattern:  snap.RecurringPattern,
		RecurringInterval: snap.RecurringInterval,
	}
	if err := c.tasks.CreateTask(ctx, snap.UserID, req); err != nil {
		return fmt.Errorf("recurring: create successor for task %s: %w", snap.ID, err)
	}

	c.log.InfoContext(ctx, "recurring task generated",
		"source_task_id", snap.ID, "user_id", snap.UserID,
		"pattern", snap.RecurringPattern, "next_due", nextDue)
	return nil
}
