package pausewatch

import (
	"context"
	"log/slog"
	"time"

	"streamwarden/internal/journal"
	"streamwarden/internal/logging"
	"streamwarden/internal/notifications"
	"streamwarden/internal/services"
	"streamwarden/internal/services/mediaserver"
	"streamwarden/internal/session"
)

// Resolution is the terminal state of a pause watch.
type Resolution string

const (
	// ResolvedResumed means playback continued before the timeout.
	ResolvedResumed Resolution = "resumed"
	// ResolvedGone means the session disappeared from the snapshot.
	ResolvedGone Resolution = "gone"
	// ResolvedKilled means the session stayed paused past the timeout and
	// was terminated.
	ResolvedKilled Resolution = "killed"
)

// DefaultMessage is sent to the viewer when a watch kills their session.
const DefaultMessage = "your stream was stopped because it was paused too long"

// Journal is the subset of the journal store a watch appends to.
type Journal interface {
	Append(ctx context.Context, entry journal.Entry) error
}

// Monitor watches a single paused session until it resumes, vanishes, or
// exceeds the pause timeout and is killed. One monitor serves one pause
// event; a session that pauses again gets a fresh monitor with a fresh
// accumulator.
type Monitor struct {
	server    mediaserver.Client
	sessionID string
	timeout   time.Duration
	interval  time.Duration
	message   string

	notifier notifications.Service
	journal  Journal
	logger   *slog.Logger
	retry    services.RetryPolicy
	dryRun   bool
	channel  string
}

// Option configures optional Monitor behavior.
type Option func(*Monitor)

// WithDryRun reports what would happen without terminating.
func WithDryRun(enabled bool) Option {
	return func(m *Monitor) { m.dryRun = enabled }
}

// WithJournal records the watch resolution.
func WithJournal(j Journal) Option {
	return func(m *Monitor) { m.journal = j }
}

// WithNotifier sends a notice when the watch kills the session.
func WithNotifier(svc notifications.Service, channelID string) Option {
	return func(m *Monitor) {
		m.notifier = svc
		m.channel = channelID
	}
}

// WithMessage overrides the termination message shown to the viewer.
func WithMessage(message string) Option {
	return func(m *Monitor) {
		if message != "" {
			m.message = message
		}
	}
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(p services.RetryPolicy) Option {
	return func(m *Monitor) { m.retry = p }
}

// NewMonitor constructs a watch over the given session. The timeout is the
// cumulative paused time allowed; interval is how often the session state
// is polled.
func NewMonitor(server mediaserver.Client, sessionID string, timeout, interval time.Duration, logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Monitor{
		server:    server,
		sessionID: sessionID,
		timeout:   timeout,
		interval:  interval,
		message:   DefaultMessage,
		notifier:  notifications.NewNoop(),
		logger: logger.With(
			logging.String("component", "pausewatch"),
			logging.String("session", sessionID),
		),
		retry: services.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls until the watch resolves or ctx is cancelled. Cancellation
// returns ctx.Err with an empty resolution; the watch decided nothing.
func (m *Monitor) Run(ctx context.Context) (Resolution, error) {
	m.logger.Info("pause watch started",
		logging.Duration("timeout", m.timeout),
		logging.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var paused time.Duration
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("pause watch cancelled")
			return "", ctx.Err()
		case <-ticker.C:
		}

		current, found, err := m.observe(ctx)
		if err != nil {
			// A failed poll decides nothing; the next tick retries.
			m.logger.Warn("poll failed", logging.Error(err))
			continue
		}
		if !found {
			m.resolve(ctx, ResolvedGone, paused)
			return ResolvedGone, nil
		}
		if current.State != session.StatePaused {
			m.resolve(ctx, ResolvedResumed, paused)
			return ResolvedResumed, nil
		}

		paused += m.interval
		m.logger.Debug("still paused", logging.Duration("accumulated", paused))
		if paused < m.timeout {
			continue
		}

		if m.dryRun {
			m.logger.Info("dry run, would terminate paused session")
			m.resolve(ctx, ResolvedKilled, paused)
			return ResolvedKilled, nil
		}
		killed, err := m.terminate(ctx)
		if err != nil {
			// Keep watching; the next tick retries the kill.
			m.logger.Error("termination failed", logging.Error(err))
			continue
		}
		if !killed {
			m.resolve(ctx, ResolvedGone, paused)
			return ResolvedGone, nil
		}
		m.notify(ctx, paused)
		m.resolve(ctx, ResolvedKilled, paused)
		return ResolvedKilled, nil
	}
}

func (m *Monitor) observe(ctx context.Context) (session.Session, bool, error) {
	var sessions []session.Session
	err := m.retry.Do(ctx, func() error {
		var listErr error
		sessions, listErr = m.server.ListSessions(ctx)
		return listErr
	})
	if err != nil {
		return session.Session{}, false, err
	}
	current, found := session.Find(sessions, m.sessionID)
	return current, found, nil
}

func (m *Monitor) terminate(ctx context.Context) (bool, error) {
	var killed bool
	err := m.retry.Do(ctx, func() error {
		var termErr error
		killed, termErr = m.server.Terminate(ctx, m.sessionID, m.message)
		return termErr
	})
	return killed, err
}

func (m *Monitor) notify(ctx context.Context, paused time.Duration) {
	msg := notifications.Message{
		Subject:  "StreamWarden - Paused Session Killed",
		Body:     m.message,
		Tags:     []string{"streamwarden", "pause"},
		Fields: []notifications.Field{
			{Label: "Session", Value: m.sessionID},
			{Label: "Paused", Value: paused.Round(time.Second).String()},
		},
	}
	if err := m.notifier.Send(ctx, m.channel, msg); err != nil {
		m.logger.Warn("kill notice failed", logging.Error(err))
	}
}

// resolve journals the terminal state. Journal failures are logged, never
// propagated.
func (m *Monitor) resolve(ctx context.Context, resolution Resolution, paused time.Duration) {
	m.logger.Info("pause watch resolved",
		logging.String("resolution", string(resolution)),
		logging.Duration("paused", paused))
	if m.journal == nil {
		return
	}
	outcome := journal.OutcomeGone
	switch resolution {
	case ResolvedKilled:
		outcome = journal.OutcomeTerminated
		if m.dryRun {
			outcome = journal.OutcomeDryRun
		}
	case ResolvedResumed:
		outcome = journal.OutcomeResumed
	}
	entry := journal.Entry{
		CycleID:   "pause-watch",
		SessionID: m.sessionID,
		Rule:      "pause-timeout",
		Reason:    m.message,
		Action:    "terminate",
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.journal.Append(ctx, entry); err != nil {
		m.logger.Warn("journal append failed", logging.Error(err))
	}
}
