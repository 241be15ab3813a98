package services

import (
	"context"
	"time"
)

// RetryPolicy bounds retries for transient transport failures. External
// calls are attempted at most Attempts times with doubling backoff capped at
// MaxBackoff.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy matches the small retry budget used for terminate and
// notify calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// Do runs op, retrying while the returned error is transient. Non-transient
// errors and context cancellation end the loop immediately.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.InitialBackoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; p.MaxBackoff <= 0 || next <= p.MaxBackoff {
			delay = next
		}
	}
	return lastErr
}
