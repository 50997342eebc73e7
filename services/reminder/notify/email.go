package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/backoff"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

const sendGridBaseURL = "https://api.sendgrid.com"

// EmailNotifier delivers reminders through the SendGrid v3 mail API.
// With an empty API key it runs in mock mode: deliveries are logged and
// reported successful, which keeps local development working without
// credentials.
type EmailNotifier struct {
	apiKey    string
	fromEmail string
	baseURL   string
	client    *http.Client
	log       logger.Logger
}

// NewEmailNotifier returns a SendGrid-backed notifier.
func NewEmailNotifier(apiKey, fromEmail string, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		baseURL:   sendGridBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// Deliver sends the reminder email. 4xx responses are permanent failures;
// 5xx and transport errors are marked retryable.
func (e *EmailNotifier) Deliver(ctx context.Context, n Notification) error {
	if e.apiKey == "" {
		e.log.InfoContext(ctx, "email notifier in mock mode, skipping send",
			"task_id", n.TaskID, "user_id", n.UserID)
		return nil
	}

	if n.Email == "" {
		return fmt.Errorf("email: notification for task %s has no recipient", n.TaskID)
	}

	body := map[string]any{
		"personalizations": []map[string]any{{
			"to": []map[string]string{{"email": n.Email}},
		}},
		"from":    map[string]string{"email": e.fromEmail},
		"subject": fmt.Sprintf("Reminder: %s", n.Title),
		"content": []map[string]string{{
			"type":  "text/plain",
			"value": emailBody(n),
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return backoff.Retryable(fmt.Errorf("email: send: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode < 500:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email: rejected with status %d: %s", resp.StatusCode, detail)
	default:
		return backoff.Retryable(fmt.Errorf("email: upstream error %d", resp.StatusCode))
	}
}

func emailBody(n Notification) string {
	if n.DueDate != nil {
		return fmt.Sprintf("Your task %q is due at %s.", n.Title, n.DueDate.Format(time.RFC1123))
	}
	return fmt.Sprintf("Your task %q is due soon.", n.Title)
}
