package policy_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"streamwarden/internal/policy"
	"streamwarden/internal/session"
)

var baseTime = time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)

func stream(id string, key int, user string, started time.Time) session.Session {
	return session.Session{
		ID:        id,
		Key:       key,
		UserID:    user,
		Username:  user,
		State:     session.StatePlaying,
		MediaType: session.MediaMovie,
		StartedAt: started,
	}
}

func TestConcurrentLimitKeepsEarliest(t *testing.T) {
	sessions := []session.Session{
		stream("1", 1, "A", baseTime),
		stream("2", 2, "A", baseTime.Add(time.Minute)),
		stream("3", 3, "A", baseTime.Add(2*time.Minute)),
	}
	rule := policy.ConcurrentStreamLimit{MaxPerUser: 2}

	violations, err := rule.Evaluate(context.Background(), policy.Env{}, sessions)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(violations))
	}
	if violations[0].SessionID != "3" {
		t.Fatalf("expected most recent session killed, got %s", violations[0].SessionID)
	}
	if !strings.Contains(violations[0].Reason, "too many concurrent streams") {
		t.Fatalf("unexpected reason %q", violations[0].Reason)
	}
}

func TestConcurrentLimitKillAllVariant(t *testing.T) {
	sessions := []session.Session{
		stream("1", 1, "A", baseTime),
		stream("2", 2, "A", baseTime.Add(time.Minute)),
		stream("3", 3, "A", baseTime.Add(2*time.Minute)),
	}
	rule := policy.ConcurrentStreamLimit{MaxPerUser: 2, KillAll: true}

	violations, err := rule.Evaluate(context.Background(), policy.Env{}, sessions)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(violations) != 3 {
		t.Fatalf("expected all sessions flagged, got %d", len(violations))
	}
}

func TestConcurrentLimitExcessCount(t *testing.T) {
	var sessions []session.Session
	for i := 0; i < 5; i++ {
		sessions = append(sessions, stream(string(rune('a'+i)), i, "A", baseTime.Add(time.Duration(i)*time.Minute)))
	}
	rule := policy.ConcurrentStreamLimit{MaxPerUser: 2}

	violations, err := rule.Evaluate(context.Background(), policy.Env{}, sessions)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// k=5, limit=2: exactly k-limit violations on the latest starters.
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d", len(violations))
	}
}

func TestConcurrentLimitTieBreakKeepsLowerKey(t *testing.T) {
	sessions := []session.Session{
		stream("high-key", 9, "A", baseTime),
		stream("low-key", 2, "A", baseTime),
	}
	rule := policy.ConcurrentStreamLimit{MaxPerUser: 1}

	violations, err := rule.Evaluate(context.Background(), policy.Env{}, sessions)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(violations) != 1 || violations[0].SessionID != "high-key" {
		t.Fatalf("expected higher session key killed on tie, got %+v", violations)
	}
}

func TestConcurrentLimitIgnoresCompliantAndExemptUsers(t *testing.T) {
	sessions := []session.Session{
		stream("1", 1, "A", baseTime),
		stream("2", 2, "A", baseTime.Add(time.Minute)),
		stream("3", 3, "vip", baseTime),
		stream("4", 4, "vip", baseTime),
		stream("5", 5, "vip", baseTime),
	}
	rule := policy.ConcurrentStreamLimit{MaxPerUser: 2, ExemptUsers: []string{"vip"}}

	violations, err := rule.Evaluate(context.Background(), policy.Env{}, sessions)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}
