package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/notifications"
	"clipflow/internal/queue"
	"clipflow/internal/workflow"
)

// Daemon runs the background sweeper and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	sweeper *workflow.Sweeper
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	QueueDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, sweeper *workflow.Sweeper) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || sweeper == nil {
		return nil, errors.New("daemon requires config, store, logger, and sweeper")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "clipflowd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "daemon")),
		store:    store,
		sweeper:  sweeper,
		logPath:  filepath.Join(cfg.Paths.LogDir, "clipflow.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the sweep loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipflow daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done.Add(1)
	go func() {
		defer d.done.Done()
		if err := d.sweeper.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("sweeper exited", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("clipflow daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.done.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("clipflow daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// QueueHealth returns aggregate queue counts.
func (d *Daemon) QueueHealth(ctx context.Context, now time.Time) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx, now)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		QueueDBPath:  d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
}
