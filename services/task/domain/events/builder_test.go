package events

import (
	"context"
	"testing"
	"time"

	pkgevents "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

func newTestTask(t *testing.T) *models.Task {
	t.Helper()
	title, err := models.NewTaskTitle("Test task")
	if err != nil {
		t.Fatalf("NewTaskTitle: %v", err)
	}
	return models.NewTask("user-1", title)
}

func TestBuilder_TaskLifecycle_IdempotencyKeyEqualsEnvelopeID(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	task := newTestTask(t)

	env, err := b.TaskLifecycle(context.Background(), TypeTaskCreated, task, nil)
	if err != nil {
		t.Fatalf("TaskLifecycle: %v", err)
	}

	var data TaskEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.IdempotencyKey != env.ID {
		t.Errorf("idempotency_key = %q, envelope id = %q; must match", data.IdempotencyKey, env.ID)
	}
	if data.TaskID != task.ID.String() {
		t.Errorf("task_id = %q", data.TaskID)
	}
	if data.Payload.Title != "Test task" {
		t.Errorf("payload title = %q", data.Payload.Title)
	}
	if env.Type != TypeTaskCreated {
		t.Errorf("type = %q", env.Type)
	}
}

func TestBuilder_SequenceIncrementsPerTask(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	ctx := context.Background()
	taskA := newTestTask(t)
	taskB := newTestTask(t)

	want := []int64{1, 2, 3}
	for _, w := range want {
		env, err := b.TaskLifecycle(ctx, TypeTaskUpdated, taskA, []string{"title"})
		if err != nil {
			t.Fatalf("TaskLifecycle: %v", err)
		}
		var data TaskEventData
		if err := env.DecodeData(&data); err != nil {
			t.Fatalf("DecodeData: %v", err)
		}
		if data.Sequence != w {
			t.Errorf("task A sequence = %d, want %d", data.Sequence, w)
		}
	}

	// Another task starts its own counter.
	env, err := b.TaskLifecycle(ctx, TypeTaskCreated, taskB, nil)
	if err != nil {
		t.Fatalf("TaskLifecycle: %v", err)
	}
	var data TaskEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.Sequence != 1 {
		t.Errorf("task B sequence = %d, want 1", data.Sequence)
	}
}

func TestBuilder_SyncSharesSequenceWithLifecycle(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	ctx := context.Background()
	task := newTestTask(t)

	if _, err := b.TaskLifecycle(ctx, TypeTaskCreated, task, nil); err != nil {
		t.Fatalf("TaskLifecycle: %v", err)
	}
	env, err := b.TaskSync(ctx, "created", task, nil)
	if err != nil {
		t.Fatalf("TaskSync: %v", err)
	}

	var data SyncEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.Sequence != 2 {
		t.Errorf("sync sequence = %d, want 2 (shared counter)", data.Sequence)
	}
	if data.Action != "created" {
		t.Errorf("action = %q", data.Action)
	}
	if env.Type != TypeTaskSync {
		t.Errorf("type = %q", env.Type)
	}
}

func TestBuilder_TaskSyncCreatedCarriesFullState(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	task := newTestTask(t)

	env, err := b.TaskSync(context.Background(), "created", task, nil)
	if err != nil {
		t.Fatalf("TaskSync: %v", err)
	}
	var data SyncEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.ChangedFields["title"] != "Test task" {
		t.Errorf("changed_fields[title] = %v", data.ChangedFields["title"])
	}
	if data.ChangedFields["status"] != "pending" {
		t.Errorf("changed_fields[status] = %v", data.ChangedFields["status"])
	}
}

func TestBuilder_TaskSyncUpdateCarriesOnlyChangedValues(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	task := newTestTask(t)

	env, err := b.TaskSync(context.Background(), "updated", task, []string{"title"})
	if err != nil {
		t.Fatalf("TaskSync: %v", err)
	}
	var data SyncEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if len(data.ChangedFields) != 1 {
		t.Fatalf("changed_fields = %v, want only the touched field", data.ChangedFields)
	}
	if data.ChangedFields["title"] != "Test task" {
		t.Errorf("changed_fields[title] = %v", data.ChangedFields["title"])
	}
}

func TestBuilder_ReminderSchedule(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	task := newTestTask(t)
	due := time.Now().Add(time.Hour).UTC()
	task.DueDate = &due
	remindAt := due.Add(-15 * time.Minute)

	env, err := b.ReminderSchedule(task, remindAt)
	if err != nil {
		t.Fatalf("ReminderSchedule: %v", err)
	}
	if env.Type != TypeReminderSchedule {
		t.Errorf("type = %q", env.Type)
	}

	var data ReminderEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.ReminderTime == nil || !data.ReminderTime.Equal(remindAt) {
		t.Errorf("reminder_time = %v, want %v", data.ReminderTime, remindAt)
	}
	if data.IdempotencyKey != env.ID {
		t.Error("idempotency_key must equal envelope id")
	}
	if data.Title != "Test task" {
		t.Errorf("title = %q", data.Title)
	}
	if len(data.NotificationChannels) != 2 {
		t.Errorf("channels = %v, want email and push", data.NotificationChannels)
	}
	if data.UserEmail == "" {
		t.Error("schedule command must carry a recipient address")
	}
}

func TestBuilder_ReminderCancel(t *testing.T) {
	b := NewBuilder(pkgevents.NewMemorySequence())
	task := newTestTask(t)

	env, err := b.ReminderCancel(task.ID, task.UserID)
	if err != nil {
		t.Fatalf("ReminderCancel: %v", err)
	}
	if env.Type != TypeReminderCancel {
		t.Errorf("type = %q", env.Type)
	}

	var data ReminderEventData
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.TaskID != task.ID.String() {
		t.Errorf("task_id = %q", data.TaskID)
	}
	if data.ReminderTime != nil {
		t.Error("cancel must not carry reminder_time")
	}
}
