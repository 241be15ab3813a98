package watchdaemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"streamwarden/internal/config"
	"streamwarden/internal/logging"
	"streamwarden/internal/notifications"
	"streamwarden/internal/pausewatch"
	"streamwarden/internal/services/mediaserver"
	"streamwarden/internal/session"
)

// Daemon hosts pause watches: it scans the live snapshot on an interval
// and runs one monitor goroutine per paused session. A flock prevents two
// daemons from double-watching the same server.
type Daemon struct {
	cfg      *config.Config
	server   mediaserver.Client
	notifier notifications.Service
	journal  pausewatch.Journal
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	watches map[string]context.CancelFunc

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon over the given server client.
func New(cfg *config.Config, server mediaserver.Client, notifier notifications.Service, journalStore pausewatch.Journal, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || server == nil {
		return nil, errors.New("watch daemon requires config and server client")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		server:   server,
		notifier: notifier,
		journal:  journalStore,
		logger:   logger.With(logging.String("component", "watchd")),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		watches:  map[string]context.CancelFunc{},
	}, nil
}

// Start acquires the instance lock and launches the scan loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("watch daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another watch daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scanLoop(runCtx)
	}()

	d.logger.Info("watch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels every watch, waits for them to exit, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("watch daemon stopped")
}

// Running reports whether the daemon has an active scan loop.
func (d *Daemon) Running() bool { return d.running.Load() }

// ActiveWatches reports how many sessions are currently being watched.
func (d *Daemon) ActiveWatches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.watches)
}

func (d *Daemon) scanLoop(ctx context.Context) {
	interval := time.Duration(d.cfg.Pause.ScanIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.scan(ctx)
		}
	}
}

// scan spawns a watch for every paused session that does not already have
// one. A failed fetch skips the scan; the next tick retries.
func (d *Daemon) scan(ctx context.Context) {
	sessions, err := d.server.ListSessions(ctx)
	if err != nil {
		d.logger.Warn("session scan failed", logging.Error(err))
		return
	}
	for _, s := range sessions {
		if s.State != session.StatePaused {
			continue
		}
		d.watch(ctx, s)
	}
}

func (d *Daemon) watch(ctx context.Context, s session.Session) {
	d.mu.Lock()
	if _, active := d.watches[s.ID]; active {
		d.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	d.watches[s.ID] = cancel
	d.mu.Unlock()

	d.logger.Info("pause watch spawned",
		logging.String("session", s.ID),
		logging.String("user", s.Username))

	monitor := pausewatch.NewMonitor(
		d.server,
		s.ID,
		time.Duration(d.cfg.Pause.TimeoutSeconds)*time.Second,
		time.Duration(d.cfg.Pause.PollIntervalSeconds)*time.Second,
		d.logger,
		pausewatch.WithNotifier(d.notifier, d.cfg.Notifications.DefaultChannel),
		pausewatch.WithJournal(d.journal),
		pausewatch.WithMessage(d.cfg.Pause.Message),
	)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			cancel()
			d.mu.Lock()
			delete(d.watches, s.ID)
			d.mu.Unlock()
		}()
		if _, err := monitor.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("pause watch failed",
				logging.String("session", s.ID),
				logging.Error(err))
		}
	}()
}
