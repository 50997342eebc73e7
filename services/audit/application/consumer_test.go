package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/domain/models"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

// fakeAuditRepo records inserts and can fail the first N attempts.
type fakeAuditRepo struct {
	byEventID map[string]*models.AuditLog
	failures  int
	attempts  int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{byEventID: make(map[string]*models.AuditLog)}
}

func (r *fakeAuditRepo) Insert(_ context.Context, entry *models.AuditLog) (bool, error) {
	r.attempts++
	if r.attempts <= r.failures {
		return false, errors.New("connection refused")
	}
	if _, ok := r.byEventID[entry.EventID]; ok {
		return false, nil
	}
	r.byEventID[entry.EventID] = entry
	return true, nil
}

func (r *fakeAuditRepo) FindByTaskID(_ context.Context, taskID string, _ int) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	for _, entry := range r.byEventID {
		if entry.TaskID == taskID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func newTestConsumer(repo *fakeAuditRepo) *Consumer {
	c := NewConsumer(repo, logger.New(&config.Config{LogLevel: "error"}))
	c.delays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return c
}

func lifecycleMessage(t *testing.T, eventType string) (*message.Message, *events.Envelope) {
	t.Helper()
	env, err := events.NewEnvelope(eventType, taskevents.TaskEventData{
		TaskID:   "task-1",
		UserID:   "user-1",
		Sequence: 1,
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return message.NewMessage(env.ID, raw), env
}

func TestHandle_RecordsEvent(t *testing.T) {
	repo := newFakeAuditRepo()
	c := newTestConsumer(repo)

	msg, env := lifecycleMessage(t, taskevents.TypeTaskCreated)
	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	entry, ok := repo.byEventID[env.ID]
	if !ok {
		t.Fatal("event not recorded")
	}
	if entry.Action != "created" {
		t.Errorf("action = %q, want created", entry.Action)
	}
	if entry.TaskID != "task-1" || entry.UserID != "user-1" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestHandle_MalformedPayloadAckedWithoutWrite(t *testing.T) {
	repo := newFakeAuditRepo()
	c := newTestConsumer(repo)

	msg := message.NewMessage("bad", []byte("not-json"))
	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("malformed message must be acked, got %v", err)
	}
	if len(repo.byEventID) != 0 {
		t.Error("malformed message must not be recorded")
	}
}

func TestHandle_MissingIdentityAckedWithoutWrite(t *testing.T) {
	repo := newFakeAuditRepo()
	c := newTestConsumer(repo)

	env, err := events.NewEnvelope(taskevents.TypeTaskCreated, taskevents.TaskEventData{TaskID: "task-1"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	raw, _ := env.Marshal()
	if err := c.Handle(context.Background(), message.NewMessage(env.ID, raw)); err != nil {
		t.Fatalf("event without user id must be acked, got %v", err)
	}
	if len(repo.byEventID) != 0 {
		t.Error("event without user id must not be recorded")
	}
}

func TestHandle_MissingTimeAckedWithoutWrite(t *testing.T) {
	repo := newFakeAuditRepo()
	c := newTestConsumer(repo)

	env, err := events.NewEnvelope(taskevents.TypeTaskCreated, taskevents.TaskEventData{
		TaskID: "task-1",
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	env.Time = time.Time{}
	raw, _ := env.Marshal()

	if err := c.Handle(context.Background(), message.NewMessage(env.ID, raw)); err != nil {
		t.Fatalf("event without time must be acked, got %v", err)
	}
	if len(repo.byEventID) != 0 {
		t.Error("event without time must not be recorded")
	}
}

func TestHandle_DuplicateDeliveryWritesOnce(t *testing.T) {
	repo := newFakeAuditRepo()
	c := newTestConsumer(repo)

	msg, _ := lifecycleMessage(t, taskevents.TypeTaskCompleted)
	for i := 0; i < 3; i++ {
		redelivery := message.NewMessage(msg.UUID, msg.Payload)
		if err := c.Handle(context.Background(), redelivery); err != nil {
			t.Fatalf("Handle #%d: %v", i, err)
		}
	}
	if len(repo.byEventID) != 1 {
		t.Errorf("rows = %d, want 1", len(repo.byEventID))
	}
}

func TestHandle_TransientFailureRetried(t *testing.T) {
	repo := newFakeAuditRepo()
	repo.failures = 2
	c := newTestConsumer(repo)

	msg, env := lifecycleMessage(t, taskevents.TypeTaskUpdated)
	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if repo.attempts != 3 {
		t.Errorf("attempts = %d, want 3", repo.attempts)
	}
	if _, ok := repo.byEventID[env.ID]; !ok {
		t.Error("event should be recorded after retries")
	}
}

func TestHandle_ExhaustedRetriesStillAcks(t *testing.T) {
	repo := newFakeAuditRepo()
	repo.failures = 100
	c := newTestConsumer(repo)

	msg, _ := lifecycleMessage(t, taskevents.TypeTaskDeleted)
	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("consumer must ack even after exhausted retries, got %v", err)
	}
	if repo.attempts != 3 {
		t.Errorf("attempts = %d, want 3", repo.attempts)
	}
}

func TestActionFromType(t *testing.T) {
	cases := map[string]string{
		taskevents.TypeTaskCreated:   "created",
		taskevents.TypeTaskUpdated:   "updated",
		taskevents.TypeTaskCompleted: "completed",
		taskevents.TypeTaskDeleted:   "deleted",
		"weird":                      "weird",
	}
	for in, want := range cases {
		if got := actionFromType(in); got != want {
			t.Errorf("actionFromType(%q) = %q, want %q", in, got, want)
		}
	}
}
