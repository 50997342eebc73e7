// Package scheduler starts and cancels Temporal reminder workflows.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	pkgworkflows "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/workflows"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/reminder/workflows"
)

// Scheduler maps reminder commands onto Temporal workflow operations.
// One workflow per task, id "reminder-{taskID}".
type Scheduler struct {
	tc *pkgworkflows.TemporalClient
}

// New returns a Scheduler over the given Temporal client.
func New(tc *pkgworkflows.TemporalClient) *Scheduler {
	return &Scheduler{tc: tc}
}

// Schedule starts (or replaces) the reminder workflow for a task.
// TERMINATE_EXISTING gives schedule replace semantics: a rescheduled due
// date kills the previous timer instead of racing it.
func (s *Scheduler) Schedule(ctx context.Context, p workflows.ReminderParams) error {
	opts := client.StartWorkflowOptions{
		ID:                       workflowID(p.TaskID),
		TaskQueue:                workflows.TaskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
	}
	if _, err := s.tc.Client.ExecuteWorkflow(ctx, opts, workflows.ReminderWorkflow, p); err != nil {
		return fmt.Errorf("schedule reminder for task %s: %w", p.TaskID, err)
	}
	return nil
}

// Cancel stops the reminder workflow for a task. Cancelling a reminder that
// does not exist (already fired, already cancelled, never scheduled) is a
// success: the desired state holds either way.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) error {
	err := s.tc.Client.CancelWorkflow(ctx, workflowID(taskID), "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("cancel reminder for task %s: %w", taskID, err)
	}
	return nil
}

func workflowID(taskID string) string {
	return "reminder-" + taskID
}
