package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/backoff"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

const fcmBaseURL = "https://fcm.googleapis.com"

// PushNotifier delivers reminders through Firebase Cloud Messaging.
// With an empty server key it runs in mock mode like the email notifier.
type PushNotifier struct {
	serverKey string
	baseURL   string
	client    *http.Client
	log       logger.Logger
}

// NewPushNotifier returns an FCM-backed notifier.
func NewPushNotifier(serverKey string, log logger.Logger) *PushNotifier {
	return &PushNotifier{
		serverKey: serverKey,
		baseURL:   fcmBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

func (p *PushNotifier) Name() string { return "push" }

type fcmResponse struct {
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

// Deliver sends the push notification. Invalid or unregistered device tokens
// are permanent failures; 5xx and transport errors are marked retryable.
func (p *PushNotifier) Deliver(ctx context.Context, n Notification) error {
	if p.serverKey == "" {
		p.log.InfoContext(ctx, "push notifier in mock mode, skipping send",
			"task_id", n.TaskID, "user_id", n.UserID)
		return nil
	}

	if n.DeviceToken == "" {
		return fmt.Errorf("push: notification for task %s has no device token", n.TaskID)
	}

	body := map[string]any{
		"to": n.DeviceToken,
		"notification": map[string]string{
			"title": "Task reminder",
			"body":  n.Title,
			"sound": "default",
		},
		"priority": "high",
		"data":     map[string]string{"task_id": n.TaskID},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("push: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/fcm/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Authorization", "key="+p.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return backoff.Retryable(fmt.Errorf("push: send: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return backoff.Retryable(fmt.Errorf("push: upstream error %d", resp.StatusCode))
	case resp.StatusCode >= 300:
		return fmt.Errorf("push: rejected with status %d", resp.StatusCode)
	}

	var fcm fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcm); err != nil {
		return backoff.Retryable(fmt.Errorf("push: decode response: %w", err))
	}
	if fcm.Failure > 0 {
		for _, res := range fcm.Results {
			if isPermanentFCMError(res.Error) {
				return fmt.Errorf("push: permanent delivery error: %s", res.Error)
			}
		}
		return backoff.Retryable(fmt.Errorf("push: %d deliveries failed", fcm.Failure))
	}
	return nil
}

func isPermanentFCMError(code string) bool {
	switch strings.TrimSpace(code) {
	case "InvalidRegistration", "NotRegistered", "MismatchSenderId", "InvalidPackageName":
		return true
	}
	return false
}
