// Package workflows holds the Temporal workflow and activities that fire
// due-date reminders at the right moment.
package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/backoff"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/notify"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/state"
)

// TaskQueue is the Temporal task queue for reminder workflows.
const TaskQueue = "reminders"

// ReminderParams carries everything the workflow needs to fire one reminder,
// including the delivery addressing the schedule command brought along.
type ReminderParams struct {
	TaskID   string
	UserID   string
	Title    string
	DueDate  *time.Time
	RemindAt time.Time

	NotificationChannels []string
	UserEmail            string
	DeviceTokens         []string
}

// ReminderWorkflow sleeps until RemindAt and then delivers the reminder.
// The workflow id is "reminder-{taskID}", so rescheduling a task's reminder
// replaces the previous run and cancelling terminates it.
//
// Activity-level retries are disabled: DeliverReminder runs its own backoff
// per notification channel and records partial success, so a blanket retry
// would double-send on the channels that already worked.
func ReminderWorkflow(ctx workflow.Context, p ReminderParams) error {
	if delay := p.RemindAt.Sub(workflow.Now(ctx)); delay > 0 {
		if err := workflow.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var a *Activities
	return workflow.ExecuteActivity(ctx, a.DeliverReminder, p).Get(ctx, nil)
}

// Activities bundles the side-effecting dependencies of the reminder workflow.
type Activities struct {
	Email notify.Notifier
	Push  notify.Notifier
	State *state.Store
	Log   logger.Logger
}

// DeliverReminder delivers over the channels the schedule command asked for:
// one email to the user's address and one push per registered device token,
// each attempted independently with its own retries. A partially failed
// delivery is still recorded as sent; the success and total counts expose
// the shortfall.
func (a *Activities) DeliverReminder(ctx context.Context, p ReminderParams) error {
	channels := p.NotificationChannels
	if len(channels) == 0 {
		channels = []string{"email", "push"}
	}

	successes, total := 0, 0

	if hasChannel(channels, "email") && a.Email != nil && p.UserEmail != "" {
		total++
		if a.deliver(ctx, a.Email, notify.Notification{
			TaskID:  p.TaskID,
			UserID:  p.UserID,
			Title:   p.Title,
			DueDate: p.DueDate,
			Email:   p.UserEmail,
		}) {
			successes++
		}
	}

	if hasChannel(channels, "push") && a.Push != nil {
		for _, token := range p.DeviceTokens {
			total++
			if a.deliver(ctx, a.Push, notify.Notification{
				TaskID:      p.TaskID,
				UserID:      p.UserID,
				Title:       p.Title,
				DueDate:     p.DueDate,
				DeviceToken: token,
			}) {
				successes++
			}
		}
	}

	if a.State != nil {
		if err := a.State.RecordDelivery(ctx, p.TaskID, successes, total); err != nil {
			a.Log.ErrorContext(ctx, "record reminder delivery", "task_id", p.TaskID, "error", err)
		}
	}

	a.Log.InfoContext(ctx, "reminder delivered",
		"task_id", p.TaskID, "successes", successes, "deliveries", total)
	return nil
}

func (a *Activities) deliver(ctx context.Context, notifier notify.Notifier, n notify.Notification) bool {
	err := backoff.Do(ctx, func(ctx context.Context) error {
		return notifier.Deliver(ctx, n)
	})
	if err != nil {
		a.Log.ErrorContext(ctx, "reminder delivery failed",
			"channel", notifier.Name(), "task_id", n.TaskID, "error", err)
		return false
	}
	return true
}

func hasChannel(channels []string, name string) bool {
	for _, c := range channels {
		if c == name {
			return true
		}
	}
	return false
}
