package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgevents "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// Builder assembles CloudEvents envelopes for task lifecycle, reminder, and
// sync events. It allocates per-task sequence numbers so consumers can order
// events for the same task, and stamps the envelope id into the payload as
// the idempotency key.
type Builder struct {
	seq pkgevents.SequenceAllocator
}

// NewBuilder returns a Builder drawing sequence numbers from seq.
func NewBuilder(seq pkgevents.SequenceAllocator) *Builder {
	return &Builder{seq: seq}
}

// TaskLifecycle builds a com.todo.task.* event carrying the full task
// snapshot. changedFields is only meaningful for TypeTaskUpdated and may be
// nil otherwise.
func (b *Builder) TaskLifecycle(ctx context.Context, eventType string, task *models.Task, changedFields []string) (*pkgevents.Envelope, error) {
	seq, err := b.seq.Next(ctx, task.ID.String())
	if err != nil {
		return nil, fmt.Errorf("events: allocate sequence for task %s: %w", task.ID, err)
	}

	id := uuid.NewString()
	snapshot := Snapshot(task)
	snapshot.ChangedFields = changedFields
	data := TaskEventData{
		TaskID:         task.ID.String(),
		UserID:         task.UserID,
		Sequence:       seq,
		IdempotencyKey: id,
		Payload:        snapshot,
	}
	return pkgevents.NewEnvelopeWithID(eventType, id, data)
}

// DefaultNotificationChannels is where reminders go when the user has not
// narrowed their channels.
var DefaultNotificationChannels = []string{"email", "push"}

// ReminderSchedule builds a com.todo.reminder.schedule command asking the
// scheduler to fire at remindAt for the task's due date. The command carries
// everything delivery needs later: channels, recipient address, and device
// tokens. There is no profile store yet, so the address falls back to the
// placeholder mailbox users are provisioned with and no tokens ride along.
func (b *Builder) ReminderSchedule(task *models.Task, remindAt time.Time) (*pkgevents.Envelope, error) {
	id := uuid.NewString()
	data := ReminderEventData{
		TaskID:               task.ID.String(),
		UserID:               task.UserID,
		Title:                task.Title.String(),
		DueDate:              task.DueDate,
		ReminderTime:         &remindAt,
		NotificationChannels: DefaultNotificationChannels,
		UserEmail:            task.UserID + "@placeholder.local",
		IdempotencyKey:       id,
	}
	return pkgevents.NewEnvelopeWithID(TypeReminderSchedule, id, data)
}

// ReminderCancel builds a com.todo.reminder.cancel command.
func (b *Builder) ReminderCancel(taskID uuid.UUID, userID string) (*pkgevents.Envelope, error) {
	id := uuid.NewString()
	data := ReminderEventData{
		TaskID:         taskID.String(),
		UserID:         userID,
		IdempotencyKey: id,
	}
	return pkgevents.NewEnvelopeWithID(TypeReminderCancel, id, data)
}

// TaskSync builds a com.todo.task.sync event for the owner's connected
// clients. The sequence is drawn from the same per-task counter as lifecycle
// events, so clients see one consistent ordering. changedFields names the
// fields the mutation touched; nil means the whole task goes out.
func (b *Builder) TaskSync(ctx context.Context, action string, task *models.Task, changedFields []string) (*pkgevents.Envelope, error) {
	seq, err := b.seq.Next(ctx, task.ID.String())
	if err != nil {
		return nil, fmt.Errorf("events: allocate sequence for task %s: %w", task.ID, err)
	}

	id := uuid.NewString()
	data := SyncEventData{
		TaskID:         task.ID.String(),
		UserID:         task.UserID,
		Action:         action,
		Sequence:       seq,
		IdempotencyKey: id,
		ChangedFields:  syncFields(task, changedFields),
	}
	return pkgevents.NewEnvelopeWithID(TypeTaskSync, id, data)
}
