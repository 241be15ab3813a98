package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{CycleID: "c1", SessionID: "s1", User: "alice", Rule: "bitrate", Reason: "over budget", Action: "terminate-notify", Outcome: OutcomeTerminated},
		{CycleID: "c1", SessionID: "s2", User: "bob", Rule: "geofence", Reason: "remote", Action: "terminate", Outcome: OutcomeGone},
		{CycleID: "c2", SessionID: "s3", User: "alice", Rule: "concurrent", Reason: "too many", Action: "terminate", Outcome: OutcomeDryRun},
	}
	for _, entry := range entries {
		if err := store.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	// Newest first.
	if recent[0].SessionID != "s3" || recent[2].SessionID != "s1" {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if recent[0].CreatedAt.IsZero() {
		t.Fatalf("created_at should round-trip")
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent limited: %v", err)
	}
	if len(limited) != 1 || limited[0].SessionID != "s3" {
		t.Fatalf("expected only the newest entry, got %+v", limited)
	}
}

func TestRecentForUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "alice"} {
		if err := store.Append(ctx, Entry{CycleID: "c", SessionID: "s", User: user, Rule: "r", Reason: "x", Action: "terminate", Outcome: OutcomeTerminated}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := store.RecentForUser(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("RecentForUser: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 alice entries, got %d", len(entries))
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := Entry{CycleID: "c", SessionID: "old", User: "u", Rule: "r", Reason: "x", Action: "terminate",
		Outcome: OutcomeTerminated, CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := Entry{CycleID: "c", SessionID: "fresh", User: "u", Rule: "r", Reason: "x", Action: "terminate",
		Outcome: OutcomeTerminated}
	if err := store.Append(ctx, old); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, fresh); err != nil {
		t.Fatalf("Append: %v", err)
	}

	removed, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one pruned entry, got %d", removed)
	}

	remaining, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(remaining) != 1 || remaining[0].SessionID != "fresh" {
		t.Fatalf("expected only the fresh entry to survive, got %+v", remaining)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Append(context.Background(), Entry{CycleID: "c", SessionID: "s", User: "u", Rule: "r", Reason: "x", Action: "terminate", Outcome: OutcomeTerminated}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	entries, err := second.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected entry to persist across reopen, got %d", len(entries))
	}
}
