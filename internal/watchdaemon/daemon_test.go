package watchdaemon

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"streamwarden/internal/config"
	"streamwarden/internal/logging"
	"streamwarden/internal/session"
)

type snapshotServer struct {
	mu         sync.Mutex
	sessions   []session.Session
	terminated []string
}

func (s *snapshotServer) ListSessions(context.Context) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.Session, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *snapshotServer) Terminate(_ context.Context, sessionID, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = append(s.terminated, sessionID)
	return true, nil
}

func (s *snapshotServer) set(sessions []session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
}

func testDaemonConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Pause.ScanIntervalSeconds = 1
	cfg.Pause.TimeoutSeconds = 3600
	cfg.Pause.PollIntervalSeconds = 1
	return &cfg
}

func TestDaemonSpawnsOneWatchPerPausedSession(t *testing.T) {
	server := &snapshotServer{sessions: []session.Session{
		{ID: "p1", State: session.StatePaused},
		{ID: "p2", State: session.StatePaused},
		{ID: "active", State: session.StatePlaying},
	}}
	daemon, err := New(testDaemonConfig(t), server, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer daemon.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for daemon.ActiveWatches() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 watches, got %d", daemon.ActiveWatches())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testDaemonConfig(t)
	server := &snapshotServer{}

	first, err := New(cfg, server, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, server, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must fail to acquire the lock")
	}
}

func TestDaemonStopCancelsWatches(t *testing.T) {
	server := &snapshotServer{sessions: []session.Session{
		{ID: "p1", State: session.StatePaused},
	}}
	daemon, err := New(testDaemonConfig(t), server, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for daemon.ActiveWatches() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected a watch, got %d", daemon.ActiveWatches())
		}
		time.Sleep(10 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		daemon.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return; a watch goroutine leaked")
	}
	if daemon.Running() {
		t.Fatal("daemon still reports running after Stop")
	}
	if len(server.terminated) != 0 {
		t.Fatalf("cancelled watches must not terminate, got %v", server.terminated)
	}

	// The lock must be reacquirable once stopped.
	replacement, err := New(daemon.cfg, server, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := replacement.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	replacement.Stop()
}

func TestLockPathLivesInStateDir(t *testing.T) {
	cfg := testDaemonConfig(t)
	daemon, err := New(cfg, &snapshotServer{}, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if filepath.Dir(daemon.lockPath) != cfg.Paths.StateDir {
		t.Fatalf("lock file should live in the state dir, got %s", daemon.lockPath)
	}
}
