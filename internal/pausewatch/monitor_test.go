package pausewatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"streamwarden/internal/journal"
	"streamwarden/internal/logging"
	"streamwarden/internal/notifications"
	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

// scriptedServer serves a fixed sequence of poll responses; the final
// response repeats once the script runs out.
type scriptedServer struct {
	mu         sync.Mutex
	polls      [][]session.Session
	errs       []error
	call       int
	terminated []string
	gone       bool
}

func (s *scriptedServer) ListSessions(context.Context) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.call
	if idx >= len(s.polls) {
		idx = len(s.polls) - 1
	}
	s.call++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	return s.polls[idx], nil
}

func (s *scriptedServer) Terminate(_ context.Context, sessionID, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return false, nil
	}
	s.terminated = append(s.terminated, sessionID)
	return true, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.Message
}

func (n *recordingNotifier) Send(_ context.Context, _ string, msg notifications.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) Test(context.Context, string) error { return nil }

func paused(id string) []session.Session {
	return []session.Session{{ID: id, State: session.StatePaused}}
}

func playing(id string) []session.Session {
	return []session.Session{{ID: id, State: session.StatePlaying}}
}

func quickRetry() services.RetryPolicy {
	return services.RetryPolicy{Attempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestMonitorKillsAfterTimeout(t *testing.T) {
	// Timeout of 6 intervals: the sixth paused poll crosses the boundary.
	server := &scriptedServer{polls: [][]session.Session{paused("s1")}}
	notifier := &recordingNotifier{}
	monitor := NewMonitor(server, "s1", 6*time.Millisecond, time.Millisecond, logging.NewNop(),
		WithNotifier(notifier, ""), WithRetryPolicy(quickRetry()))

	resolution, err := monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolution != ResolvedKilled {
		t.Fatalf("expected killed, got %s", resolution)
	}
	if server.call != 6 {
		t.Fatalf("expected the kill on the sixth poll, got %d polls", server.call)
	}
	if len(server.terminated) != 1 || server.terminated[0] != "s1" {
		t.Fatalf("expected s1 terminated, got %v", server.terminated)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("successful kill must notify, got %d", len(notifier.sent))
	}
}

func TestMonitorResolvesResumed(t *testing.T) {
	server := &scriptedServer{polls: [][]session.Session{
		paused("s1"),
		paused("s1"),
		playing("s1"),
	}}
	monitor := NewMonitor(server, "s1", time.Minute, time.Millisecond, logging.NewNop(),
		WithRetryPolicy(quickRetry()))

	resolution, err := monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolution != ResolvedResumed {
		t.Fatalf("expected resumed, got %s", resolution)
	}
	if len(server.terminated) != 0 {
		t.Fatalf("a resumed session must not be terminated, got %v", server.terminated)
	}
}

func TestMonitorResolvesGoneWhenSessionVanishes(t *testing.T) {
	server := &scriptedServer{polls: [][]session.Session{
		paused("s1"),
		{},
	}}
	monitor := NewMonitor(server, "s1", time.Minute, time.Millisecond, logging.NewNop(),
		WithRetryPolicy(quickRetry()))

	resolution, err := monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolution != ResolvedGone {
		t.Fatalf("absence is the session ending, expected gone, got %s", resolution)
	}
}

func TestMonitorFailedPollDecidesNothing(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "mediaserver", "list", "down", nil)
	server := &scriptedServer{
		polls: [][]session.Session{paused("s1"), nil, playing("s1")},
		errs:  []error{nil, transient, nil},
	}
	monitor := NewMonitor(server, "s1", time.Minute, time.Millisecond, logging.NewNop(),
		WithRetryPolicy(quickRetry()))

	resolution, err := monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolution != ResolvedResumed {
		t.Fatalf("watch must survive a failed poll, got %s", resolution)
	}
	if server.call != 3 {
		t.Fatalf("expected 3 polls, got %d", server.call)
	}
}

func TestMonitorCancellation(t *testing.T) {
	server := &scriptedServer{polls: [][]session.Session{paused("s1")}}
	monitor := NewMonitor(server, "s1", time.Hour, 5*time.Millisecond, logging.NewNop(),
		WithRetryPolicy(quickRetry()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var resolution Resolution
	var runErr error
	go func() {
		defer close(done)
		resolution, runErr = monitor.Run(ctx)
	}()
	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
	if !errors.Is(runErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", runErr)
	}
	if resolution != "" {
		t.Fatalf("a cancelled watch decides nothing, got %s", resolution)
	}
	if len(server.terminated) != 0 {
		t.Fatalf("no terminations after cancel, got %v", server.terminated)
	}
}

func TestMonitorDryRunSkipsTermination(t *testing.T) {
	server := &scriptedServer{polls: [][]session.Session{paused("s1")}}
	journalStore := &fakeJournal{}
	monitor := NewMonitor(server, "s1", 2*time.Millisecond, time.Millisecond, logging.NewNop(),
		WithDryRun(true), WithJournal(journalStore), WithRetryPolicy(quickRetry()))

	resolution, err := monitor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolution != ResolvedKilled {
		t.Fatalf("dry run still reports the decision, got %s", resolution)
	}
	if len(server.terminated) != 0 {
		t.Fatalf("dry run must not terminate, got %v", server.terminated)
	}
	if len(journalStore.entries) != 1 || journalStore.entries[0].Outcome != journal.OutcomeDryRun {
		t.Fatalf("expected a dry-run journal entry, got %+v", journalStore.entries)
	}
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (f *fakeJournal) Append(_ context.Context, entry journal.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}
