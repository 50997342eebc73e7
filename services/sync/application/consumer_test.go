package application

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/events"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
	taskevents "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/events"
)

type fakeBroadcaster struct {
	byUser map[string][]any
}

func (f *fakeBroadcaster) Broadcast(userID string, v any) int {
	if f.byUser == nil {
		f.byUser = make(map[string][]any)
	}
	f.byUser[userID] = append(f.byUser[userID], v)
	return 1
}

func newTestConsumer() (*Consumer, *fakeBroadcaster) {
	reg := &fakeBroadcaster{}
	log := logger.New(&config.Config{LogLevel: "error"})
	return NewConsumer(reg, log), reg
}

func syncMessage(t *testing.T, data taskevents.SyncEventData) *message.Message {
	t.Helper()
	env, err := events.NewEnvelope(taskevents.TypeTaskSync, data)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return message.NewMessage(env.ID, raw)
}

func TestHandle_BroadcastsToOwner(t *testing.T) {
	c, reg := newTestConsumer()

	msg := syncMessage(t, taskevents.SyncEventData{
		TaskID:        "task-1",
		UserID:        "user-1",
		Action:        "updated",
		Sequence:      4,
		ChangedFields: map[string]any{"title": "Renamed"},
	})

	if err := c.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got := reg.byUser["user-1"]
	if len(got) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(got))
	}
	data, ok := got[0].(taskevents.SyncEventData)
	if !ok {
		t.Fatalf("payload type %T", got[0])
	}
	if data.Action != "updated" || data.Sequence != 4 {
		t.Errorf("payload = %+v", data)
	}
	if data.ChangedFields["title"] != "Renamed" {
		t.Errorf("changed_fields = %v", data.ChangedFields)
	}
}

func TestHandle_DuplicateBroadcastOnce(t *testing.T) {
	c, reg := newTestConsumer()

	msg := syncMessage(t, taskevents.SyncEventData{TaskID: "task-1", UserID: "user-1", Action: "created"})
	for i := 0; i < 3; i++ {
		redelivery := message.NewMessage(msg.UUID, msg.Payload)
		if err := c.Handle(context.Background(), redelivery); err != nil {
			t.Fatalf("Handle #%d: %v", i, err)
		}
	}
	if got := len(reg.byUser["user-1"]); got != 1 {
		t.Errorf("broadcasts = %d, want 1", got)
	}
}

func TestHandle_MalformedEventAcked(t *testing.T) {
	c, reg := newTestConsumer()

	if err := c.Handle(context.Background(), message.NewMessage("bad", []byte("{"))); err != nil {
		t.Fatalf("malformed event must be acked, got %v", err)
	}
	if len(reg.byUser) != 0 {
		t.Error("no broadcast expected")
	}
}
