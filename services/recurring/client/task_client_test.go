package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

const testSecret = "test-jwt-secret-must-be-32-bytes"

func newTestClient(baseURL string) (*TaskClient, *auth.TokenManager) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	log := logger.New(&config.Config{LogLevel: "error"})
	c := New(baseURL, tokens, log)
	c.delays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return c, tokens
}

func TestCreateTask_PostsWithServiceToken(t *testing.T) {
	var gotBody CreateTaskRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, tokens := newTestClient(srv.URL)

	due := time.Now().Add(24 * time.Hour).UTC()
	err := c.CreateTask(context.Background(), "user-1", CreateTaskRequest{
		Title:             "Water plants",
		Priority:          "medium",
		DueDate:           &due,
		RecurringPattern:  "weekly",
		RecurringInterval: 1,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if gotBody.Title != "Water plants" || gotBody.RecurringPattern != "weekly" {
		t.Errorf("body = %+v", gotBody)
	}

	raw, ok := strings.CutPrefix(gotAuth, "Bearer ")
	if !ok {
		t.Fatalf("auth header = %q", gotAuth)
	}
	userID, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("token subject = %q, want user-1", userID)
	}
}

func TestCreateTask_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	if err := c.CreateTask(context.Background(), "user-1", CreateTaskRequest{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestCreateTask_ServerErrorRetriedToSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	if err := c.CreateTask(context.Background(), "user-1", CreateTaskRequest{Title: "x"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestCreateTask_ExhaustsRetriesOnPersistentOutage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	if err := c.CreateTask(context.Background(), "user-1", CreateTaskRequest{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}
