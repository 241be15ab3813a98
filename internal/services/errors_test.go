package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"streamwarden/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrTransient, "media-server", "list sessions", "", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected wrapped error to match ErrTransient, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to retain cause, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "monitor", "history", "empty response", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"fetch", services.Wrap(services.ErrTransient, "a", "b", "", nil), true},
		{"action", services.Wrap(services.ErrTransientAction, "a", "b", "", nil), true},
		{"config", services.Wrap(services.ErrConfiguration, "a", "b", "", nil), false},
		{"evaluation", services.Wrap(services.ErrEvaluation, "a", "b", "", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryPolicyStopsOnPermanentError(t *testing.T) {
	calls := 0
	policy := services.RetryPolicy{Attempts: 3, InitialBackoff: time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		return services.Wrap(services.ErrConfiguration, "c", "op", "", nil)
	})
	if calls != 1 {
		t.Fatalf("expected a single attempt for non-transient error, got %d", calls)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRetryPolicyRetriesTransient(t *testing.T) {
	calls := 0
	policy := services.RetryPolicy{Attempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return services.Wrap(services.ErrTransientAction, "c", "op", "", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	policy := services.RetryPolicy{Attempts: 2, InitialBackoff: time.Millisecond}
	err := policy.Do(context.Background(), func() error {
		calls++
		return services.Wrap(services.ErrTransientAction, "c", "op", "", nil)
	})
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if !errors.Is(err, services.ErrTransientAction) {
		t.Fatalf("expected transient action error, got %v", err)
	}
}
