// Package client is the HTTP client the recurring-task generator uses to
// create successor tasks through the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/backoff"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

// CreateTaskRequest mirrors the task API's POST /tasks body.
type CreateTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Priority          string     `json:"priority,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	RecurringPattern  string     `json:"recurring_pattern,omitempty"`
	RecurringInterval int        `json:"recurring_interval,omitempty"`
}

// TaskClient creates tasks via the task API on behalf of a user. It mints a
// short-lived bearer token per request; the generator runs in the worker and
// has no user session to forward.
type TaskClient struct {
	baseURL string
	tokens  *auth.TokenManager
	client  *http.Client
	log     logger.Logger
	delays  []time.Duration
}

// New returns a TaskClient pointed at the task API.
func New(baseURL string, tokens *auth.TokenManager, log logger.Logger) *TaskClient {
	return &TaskClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
		delays:  backoff.Delays,
	}
}

// CreateTask posts a new task owned by userID. Transport failures and 5xx
// responses are retried on the standard backoff schedule; 4xx responses are
// permanent, since retrying a rejected body can only fail again.
func (c *TaskClient) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal create request: %w", err)
	}

	token, err := c.tokens.Generate(userID)
	if err != nil {
		return fmt.Errorf("mint service token: %w", err)
	}

	return backoff.DoWithDelays(ctx, c.delays, func(ctx context.Context) error {
		return c.post(ctx, token, body)
	})
}

func (c *TaskClient) post(ctx context.Context, token string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return backoff.Retryable(fmt.Errorf("post task: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("task api returned %d: %s", resp.StatusCode, detail)
	if resp.StatusCode >= 500 {
		return backoff.Retryable(err)
	}
	return err
}
