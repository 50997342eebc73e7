// Package application contains the audit consumer for task lifecycle events.
package application

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/backoff"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/domain/models"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/domain/repositories"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

// Consumer writes every task lifecycle event to the audit trail.
//
// The consumer acks unconditionally: the unique event_id index already
// guards against duplicates, and a poison message must never wedge the
// topic. Transient database failures are retried with the standard backoff
// before the event is given up on and logged.
type Consumer struct {
	repo   repositories.AuditRepository
	log    logger.Logger
	delays []time.Duration
}

// NewConsumer returns an audit consumer over repo.
func NewConsumer(repo repositories.AuditRepository, log logger.Logger) *Consumer {
	return &Consumer{repo: repo, log: log, delays: backoff.Delays}
}

// Handle processes one message from the task-events topic. It always returns
// nil so the bus acks; failures are logged, never redelivered.
func (c *Consumer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := events.ParseEnvelope(msg.Payload)
	if err != nil {
		c.log.WarnContext(ctx, "audit: dropping malformed event", "error", err)
		return nil
	}
	if env.Time.IsZero() {
		// The audit row's timestamp is the event time, so an envelope
		// without one cannot be recorded truthfully.
		c.log.WarnContext(ctx, "audit: dropping event without time",
			"event_id", env.ID, "event_type", env.Type)
		return nil
	}

	var data taskevents.TaskEventData
	if err := env.DecodeData(&data); err != nil {
		c.log.WarnContext(ctx, "audit: dropping undecodable event",
			"event_id", env.ID, "event_type", env.Type, "error", err)
		return nil
	}
	if data.UserID == "" || data.TaskID == "" {
		c.log.WarnContext(ctx, "audit: dropping event without task/user id",
			"event_id", env.ID, "event_type", env.Type)
		return nil
	}

	entry := &models.AuditLog{
		EventID:   env.ID,
		EventType: env.Type,
		TaskID:    data.TaskID,
		UserID:    data.UserID,
		Action:    actionFromType(env.Type),
		Sequence:  data.Sequence,
		Payload:   env.Data,
		CreatedAt: env.Time,
	}

	var inserted bool
	err = backoff.DoWithDelays(ctx, c.delays, func(ctx context.Context) error {
		var insertErr error
		inserted, insertErr = c.repo.Insert(ctx, entry)
		return backoff.Retryable(insertErr)
	})
	if err != nil {
		c.log.ErrorContext(ctx, "audit: giving up on event after retries",
			"event_id", env.ID, "event_type", env.Type, "error", err)
		return nil
	}

	if !inserted {
		c.log.DebugContext(ctx, "audit: duplicate event skipped", "event_id", env.ID)
		return nil
	}

	c.log.InfoContext(ctx, "audit: event recorded",
		"event_id", env.ID, "event_type", env.Type, "task_id", data.TaskID)
	return nil
}

// actionFromType maps "com.todo.task.created" to "created" and so on.
func actionFromType(eventType string) string {
	if i := strings.LastIndexByte(eventType, '.'); i >= 0 {
		return eventType[i+1:]
	}
	return eventType
}
