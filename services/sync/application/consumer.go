// Package application contains the sync consumer that fans task-updates
// events out to connected WebSocket clients.
package application

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/idempotency"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

// Broadcaster is the slice of the connection registry the consumer needs.
type Broadcaster interface {
	Broadcast(userID string, v any) int
}

// Consumer pushes sync events to the owner's open connections.
//
// Dedup uses an in-process ledger: connections live in this process, so a
// duplicate delivered to another instance has no one to reach here anyway.
// Every outcome acks; a client that missed a broadcast recovers by
// refetching, not by redelivery.
type Consumer struct {
	reg    Broadcaster
	ledger idempotency.Ledger
	log    logger.Logger
}

// NewConsumer returns a sync consumer over the given registry.
func NewConsumer(reg Broadcaster, log logger.Logger) *Consumer {
	return &Consumer{reg: reg, ledger: idempotency.NewMemoryLedger(), log: log}
}

// Handle processes one message from the task-updates topic.
func (c *Consumer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := events.ParseEnvelope(msg.Payload)
	if err != nil {
		c.log.WarnContext(ctx, "sync: dropping malformed event", "error", err)
		return nil
	}

	fresh, err := c.ledger.MarkIfNew(ctx, env.ID)
	if err != nil || !fresh {
		return nil
	}

	var data taskevents.SyncEventData
	if err := env.DecodeData(&data); err != nil {
		c.log.WarnContext(ctx, "sync: dropping undecodable event",
			"event_id", env.ID, "error", err)
		return nil
	}

	sent := c.reg.Broadcast(data.UserID, data)
	c.log.DebugContext(ctx, "sync event broadcast",
		"event_id", env.ID, "user_id", data.UserID,
		"action", data.Action, "recipients", sent)
	return nil
}
