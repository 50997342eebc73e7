package services

import (
	"context"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	domainevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// ReminderLeadTime is how long before the due date a reminder fires.
const ReminderLeadTime = 15 * time.Minute

// EventDispatcher receives committed task mutations and publishes the
// resulting events. TaskService calls it after every successful write;
// *EventRouter is the production implementation.
type EventDispatcher interface {
	TaskCreated(ctx context.Context, task *models.Task)
	TaskUpdated(ctx context.Context, task *models.Task, changedFields []string, dueDateChanged bool)
	TaskCompleted(ctx context.Context, task *models.Task)
	TaskReopened(ctx context.Context, task *models.Task)
	TaskDeleted(ctx context.Context, task *models.Task)
}

// EventRouter decides which events each committed task mutation produces and
// hands them to the fire-and-forget publisher. Every mutation emits a
// lifecycle event on task-events and a sync event on task-updates; due-date
// changes additionally emit schedule or cancel commands on reminders.
//
// Publishing never fails the caller: the publisher logs and counts failures.
type EventRouter struct {
	builder *domainevents.Builder
	pub     *events.Publisher
	log     logger.Logger
}

// NewEventRouter wires a router over the given builder and publisher.
func NewEventRouter(builder *domainevents.Builder, pub *events.Publisher, log logger.Logger) *EventRouter {
	return &EventRouter{builder: builder, pub: pub, log: log}
}

// TaskCreated publishes created events and schedules a reminder when the task
// has an actionable due date.
func (r *EventRouter) TaskCreated(ctx context.Context, task *models.Task) {
	r.lifecycle(ctx, domainevents.TypeTaskCreated, task, nil)
	r.sync(ctx, "created", task, nil)
	if remindAt, ok := reminderTime(task); ok {
		r.schedule(ctx, task, remindAt)
	}
}

// TaskUpdated publishes updated events. When the due date changed, the
// reminder is rescheduled or cancelled to match.
func (r *EventRouter) TaskUpdated(ctx context.Context, task *models.Task, changedFields []string, dueDateChanged bool) {
	r.lifecycle(ctx, domainevents.TypeTaskUpdated, task, changedFields)
	r.sync(ctx, "updated", task, changedFields)
	if !dueDateChanged {
		return
	}
	if remindAt, ok := reminderTime(task); ok {
		r.schedule(ctx, task, remindAt)
	} else {
		r.cancel(ctx, task)
	}
}

// TaskCompleted publishes completed events and cancels any pending reminder.
// The recurring-task consumer reacts to the lifecycle event downstream.
func (r *EventRouter) TaskCompleted(ctx context.Context, task *models.Task) {
	r.lifecycle(ctx, domainevents.TypeTaskCompleted, task, nil)
	r.sync(ctx, "completed", task, []string{"status"})
	r.cancel(ctx, task)
}

// TaskReopened publishes an updated event for a task toggled back to pending
// and reschedules its reminder when the due date is still actionable.
func (r *EventRouter) TaskReopened(ctx context.Context, task *models.Task) {
	r.lifecycle(ctx, domainevents.TypeTaskUpdated, task, []string{"status"})
	r.sync(ctx, "updated", task, []string{"status"})
	if remindAt, ok := reminderTime(task); ok {
		r.schedule(ctx, task, remindAt)
	}
}

// TaskDeleted publishes deleted events carrying the pre-delete snapshot and
// cancels any pending reminder.
func (r *EventRouter) TaskDeleted(ctx context.Context, task *models.Task) {
	r.lifecycle(ctx, domainevents.TypeTaskDeleted, task, nil)
	r.sync(ctx, "deleted", task, nil)
	r.cancel(ctx, task)
}

func (r *EventRouter) lifecycle(ctx context.Context, eventType string, task *models.Task, changed []string) {
	env, err := r.builder.TaskLifecycle(ctx, eventType, task, changed)
	if err != nil {
		r.log.ErrorContext(ctx, "build lifecycle event", "event_type", eventType, "task_id", task.ID, "error", err)
		return
	}
	r.pub.Publish(ctx, domainevents.TopicTaskEvents, env)
}

func (r *EventRouter) sync(ctx context.Context, action string, task *models.Task, changed []string) {
	env, err := r.builder.TaskSync(ctx, action, task, changed)
	if err != nil {
		r.log.ErrorContext(ctx, "build sync event", "action", action, "task_id", task.ID, "error", err)
		return
	}
	r.pub.Publish(ctx, domainevents.TopicTaskUpdates, env)
}

func (r *EventRouter) schedule(ctx context.Context, task *models.Task, remindAt time.Time) {
	env, err := r.builder.ReminderSchedule(task, remindAt)
	if err != nil {
		r.log.ErrorContext(ctx, "build reminder schedule", "task_id", task.ID, "error", err)
		return
	}
	r.pub.Publish(ctx, domainevents.TopicReminders, env)
}

func (r *EventRouter) cancel(ctx context.Context, task *models.Task) {
	env, err := r.builder.ReminderCancel(task.ID, task.UserID)
	if err != nil {
		r.log.ErrorContext(ctx, "build reminder cancel", "task_id", task.ID, "error", err)
		return
	}
	r.pub.Publish(ctx, domainevents.TopicReminders, env)
}

// reminderTime returns when the task's reminder should fire. A reminder is
// only scheduled when the task is pending, has a due date, and the fire time
// is still in the future.
func reminderTime(task *models.Task) (time.Time, bool) {
	if task.DueDate == nil || task.IsCompleted() {
		return time.Time{}, false
	}
	remindAt := task.DueDate.Add(-ReminderLeadTime)
	if !remindAt.After(time.Now()) {
		return time.Time{}, false
	}
	return remindAt, true
}
