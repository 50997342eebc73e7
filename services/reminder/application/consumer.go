// Package application contains the reminder consumer for schedule and
// cancel commands.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/idempotency"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/state"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/workflows"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

// JobScheduler is the slice of the Temporal scheduler the consumer needs.
type JobScheduler interface {
	Schedule(ctx context.Context, p workflows.ReminderParams) error
	Cancel(ctx context.Context, taskID string) error
}

// StateStore records reminder lifecycle transitions.
type StateStore interface {
	Save(ctx context.Context, rec *state.Reminder) error
	SetStatus(ctx context.Context, taskID, status string) error
}

// Consumer turns reminder commands into Temporal workflow operations.
//
// Handler errors are returned to the bus (nack) so transient scheduler
// outages get redelivery; the event id is marked processed only after the
// operation succeeds, so a redelivered command is retried rather than
// skipped. Malformed commands are acked and dropped.
type Consumer struct {
	scheduler JobScheduler
	store     StateStore
	ledger    idempotency.Ledger
	log       logger.Logger
}

// NewConsumer returns a reminder consumer.
func NewConsumer(scheduler JobScheduler, store StateStore, ledger idempotency.Ledger, log logger.Logger) *Consumer {
	return &Consumer{scheduler: scheduler, store: store, ledger: ledger, log: log}
}

// Handle processes one message from the reminders topic.
func (c *Consumer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := events.ParseEnvelope(msg.Payload)
	if err != nil {
		c.log.WarnContext(ctx, "reminder: dropping malformed command", "error", err)
		return nil
	}

	seen, err := c.ledger.Seen(ctx, env.ID)
	if err != nil {
		return fmt.Errorf("reminder: check ledger: %w", err)
	}
	if seen {
		c.log.DebugContext(ctx, "reminder: duplicate command skipped", "event_id", env.ID)
		return nil
	}

	var data taskevents.ReminderEventData
	if err := env.DecodeData(&data); err != nil {
		c.log.WarnContext(ctx, "reminder: dropping undecodable command",
			"event_id", env.ID, "event_type", env.Type, "error", err)
		return nil
	}

	switch env.Type {
	case taskevents.TypeReminderSchedule:
		err = c.schedule(ctx, data)
	case taskevents.TypeReminderCancel:
		err = c.cancel(ctx, data)
	default:
		c.log.WarnContext(ctx, "reminder: dropping unknown command type",
			"event_id", env.ID, "event_type", env.Type)
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.ledger.MarkSeen(ctx, env.ID); err != nil {
		// The operation itself is idempotent, so a redelivery after a failed
		// mark is harmless.
		c.log.WarnContext(ctx, "reminder: mark processed failed", "event_id", env.ID, "error", err)
	}
	return nil
}

func (c *Consumer) schedule(ctx context.Context, data taskevents.ReminderEventData) error {
	if data.ReminderTime == nil {
		c.log.WarnContext(ctx, "reminder: schedule command missing reminder_time", "task_id", data.TaskID)
		return nil
	}
	if !data.ReminderTime.After(time.Now()) {
		c.log.InfoContext(ctx, "reminder: fire time already passed, skipping",
			"task_id", data.TaskID, "reminder_time", data.ReminderTime)
		return nil
	}

	p := workflows.ReminderParams{
		TaskID:               data.TaskID,
		UserID:               data.UserID,
		Title:                data.Title,
		DueDate:              data.DueDate,
		RemindAt:             *data.ReminderTime,
		NotificationChannels: data.NotificationChannels,
		UserEmail:            data.UserEmail,
		DeviceTokens:         data.DeviceTokens,
	}
	if err := c.scheduler.Schedule(ctx, p); err != nil {
		return fmt.Errorf("reminder: schedule: %w", err)
	}

	if err := c.store.Save(ctx, &state.Reminder{
		TaskID:   data.TaskID,
		UserID:   data.UserID,
		Title:    data.Title,
		Status:   state.StatusScheduled,
		RemindAt: *data.ReminderTime,
	}); err != nil {
		c.log.ErrorContext(ctx, "reminder: save state", "task_id", data.TaskID, "error", err)
	}

	c.log.InfoContext(ctx, "reminder scheduled", "task_id", data.TaskID, "reminder_time", data.ReminderTime)
	return nil
}

func (c *Consumer) cancel(ctx context.Context, data taskevents.ReminderEventData) error {
	if err := c.scheduler.Cancel(ctx, data.TaskID); err != nil {
		return fmt.Errorf("reminder: cancel: %w", err)
	}

	if err := c.store.SetStatus(ctx, data.TaskID, state.StatusCancelled); err != nil {
		c.log.ErrorContext(ctx, "reminder: set cancelled state", "task_id", data.TaskID, "error", err)
	}

	c.log.InfoContext(ctx, "reminder cancelled", "task_id", data.TaskID)
	return nil
}
