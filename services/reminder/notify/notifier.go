// Package notify delivers due-date reminders over email and push channels.
package notify

import (
	"context"
	"time"
)

// Notification is one reminder to deliver to a user. Email carries the
// recipient address for the email channel; DeviceToken carries one FCM
// registration token for the push channel, so a user with several devices
// gets one Notification per token.
type Notification struct {
	TaskID      string
	UserID      string
	Title       string
	DueDate     *time.Time
	Email       string
	DeviceToken string
}

// Notifier delivers a notification over one channel. Implementations return
// backoff.Retryable-wrapped errors for transient failures (timeouts, 5xx)
// and plain errors for permanent ones (bad API key, invalid recipient), so
// callers retry only what can succeed.
type Notifier interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}
