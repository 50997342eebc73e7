// Package backoff holds the shared retry policy for event consumers and
// outbound delivery calls.
package backoff

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Delays is the standard consumer retry schedule. Each entry backs one
// attempt: a transient failure sleeps the failing attempt's entry before the
// next try, and the last attempt returns its error without sleeping. Three
// entries means three attempts total with 1s and 5s waits between them.
var Delays = []time.Duration{time.Second, 5 * time.Second, 25 * time.Second}

// Do runs fn with the standard consumer retry policy. fn signals a transient
// failure by returning retry.RetryableError(err); any other error stops the
// retries immediately.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return DoWithDelays(ctx, Delays, fn)
}

// DoWithDelays is Do with a caller-chosen delay schedule. An empty schedule
// runs fn once.
func DoWithDelays(ctx context.Context, delays []time.Duration, fn func(ctx context.Context) error) error {
	if len(delays) == 0 {
		return fn(ctx)
	}
	return retry.Do(ctx, policy(delays), fn)
}

// Retryable marks err as transient so Do will retry it. A nil err returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retry.RetryableError(err)
}

func policy(delays []time.Duration) retry.Backoff {
	attempt := 0
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		if attempt >= len(delays) {
			return 0, true
		}
		d := delays[attempt]
		attempt++
		return d, false
	})
	// One attempt per schedule entry, so the final entry never gets slept.
	return retry.WithMaxRetries(uint64(len(delays)-1), b)
}
