package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/idempotency"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/recurring/client"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

type fakeTaskCreator struct {
	created []client.CreateTaskRequest
	users   []string
	err     error
}

func (f *fakeTaskCreator) CreateTask(_ context.Context, userID string, req client.CreateTaskRequest) error {
	if f.err != nil {
		return f.err
	}
	f.users = append(f.users, userID)
	f.created = append(f.created, req)
	return nil
}

func newTestConsumer() (*Consumer, *fakeTaskCreator) {
	tasks := &fakeTaskCreator{}
	log := logger.New(&config.Config{LogLevel: "error"})
	return NewConsumer(tasks, idempotency.NewMemoryLedger(), log), tasks
}

func eventMessage(t *testing.T, eventType string, snap taskevents.TaskSnapshot) *message.Message {
	t.Helper()
	env, err := events.NewEnvelope(eventType, taskevents.TaskEventData{
		TaskID:         snap.ID,
		UserID:         snap.UserID,
		IdempotencyKey: "ignored-here",
		Payload:        snap,
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return message.NewMessage(env.ID, raw)
}

func weeklySnapshot(due time.Time) taskevents.TaskSnapshot {
	return taskevents.TaskSnapshot{
		ID:                "task-1",
		UserID:            "user-1",
		Title:             "Water plants",
		Status:            "completed",
		Priority:          "medium",
		Tags:              []string{"home"},
		DueDate:           &due,
		RecurringPattern:  "weekly",
		RecurringInterval: 1,
	}
}

func TestHandle_GeneratesSuccessor(t *testing.T) {
	c, tasks := newTestConsumer()

	due := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	msg := eventMessage(t, taskevents.TypeTaskCompleted, weeklySnapshot(due))

	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(tasks.created) != 1 {
		t.Fatalf("created = %d, want 1", len(tasks.created))
	}

	got := tasks.created[0]
	if got.Title != "Water plants" || got.RecurringPattern != "weekly" {
		t.Errorf("successor = %+v", got)
	}
	wantDue := due.AddDate(0, 0, 7)
	if got.DueDate == nil || !got.DueDate.Equal(wantDue) {
		t.Errorf("next due = %v, want %v", got.DueDate, wantDue)
	}
	if tasks.users[0] != "user-1" {
		t.Errorf("owner = %q", tasks.users[0])
	}
}

func TestHandle_IgnoresNonCompletedEvents(t *testing.T) {
	c, tasks := newTestConsumer()

	due := time.Now().Add(time.Hour)
	for _, eventType := range []string{taskevents.TypeTaskCreated, taskevents.TypeTaskUpdated, taskevents.TypeTaskDeleted} {
		msg := eventMessage(t, eventType, weeklySnapshot(due))
		if err := c.Handle(context.Background(), msg); err != nil {
			t.Fatalf("Handle(%s): %v", eventType, err)
		}
	}
	if len(tasks.created) != 0 {
		t.Errorf("created = %d, want 0", len(tasks.created))
	}
}

func TestHandle_IgnoresNonRecurringTasks(t *testing.T) {
	c, tasks := newTestConsumer()

	due := time.Now().Add(time.Hour)
	snap := weeklySnapshot(due)
	snap.RecurringPattern = "none"

	if err := c.Handle(context.Background(), eventMessage(t, taskevents.TypeTaskCompleted, snap)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(tasks.created) != 0 {
		t.Errorf("created = %d, want 0", len(tasks.created))
	}
}

func TestHandle_MissingDueDateSkipped(t *testing.T) {
	c, tasks := newTestConsumer()

	snap := weeklySnapshot(time.Now())
	snap.DueDate = nil

	if err := c.Handle(context.Background(), eventMessage(t, taskevents.TypeTaskCompleted, snap)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(tasks.created) != 0 {
		t.Errorf("created = %d, want 0", len(tasks.created))
	}
}

func TestHandle_DuplicateDeliveryCreatesOneSuccessor(t *testing.T) {
	c, tasks := newTestConsumer()

	msg := eventMessage(t, taskevents.TypeTaskCompleted, weeklySnapshot(time.Now().UTC()))
	for i := 0; i < 3; i++ {
		redelivery := message.NewMessage(msg.UUID, msg.Payload)
		if err := c.Handle(context.Background(), redelivery); err != nil {
			t.Fatalf("Handle #%d: %v", i, err)
		}
	}
	if len(tasks.created) != 1 {
		t.Errorf("created = %d, want 1", len(tasks.created))
	}
}

func TestHandle_CreateFailureNacksWithoutMarking(t *testing.T) {
	c, tasks := newTestConsumer()
	tasks.err = errors.New("task api down")

	msg := eventMessage(t, taskevents.TypeTaskCompleted, weeklySnapshot(time.Now().UTC()))
	if err := c.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected error for redelivery")
	}

	// Redelivery after the API recovers creates the successor.
	tasks.err = nil
	if err := c.Handle(context.Background(), message.NewMessage(msg.UUID, msg.Payload)); err != nil {
		t.Fatalf("redelivery Handle: %v", err)
	}
	if len(tasks.created) != 1 {
		t.Errorf("created = %d, want 1", len(tasks.created))
	}
}

func TestHandle_MalformedEventAcked(t *testing.T) {
	c, tasks := newTestConsumer()

	if err := c.Handle(context.Background(), message.NewMessage("bad", []byte("not json"))); err != nil {
		t.Fatalf("malformed event must be acked, got %v", err)
	}
	if len(tasks.created) != 0 {
		t.Error("no create expected")
	}
}
