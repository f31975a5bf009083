package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/notifications"
	"clipflow/internal/queue"
	"clipflow/internal/sla"
)

// Sweeper reconciles claim expiry and SLA state in the background.
type Sweeper struct {
	store    *queue.Store
	notifier notifications.Service
	policy   sla.Policy
	logger   *slog.Logger
	clk      clock.Clock

	interval     time.Duration
	overdueEvery time.Duration
	alertDedup   time.Duration

	mu          sync.Mutex
	lastOverdue time.Time
	alerted     map[int64]time.Time
}

// NewSweeper builds a sweeper from configuration.
func NewSweeper(store *queue.Store, notifier notifications.Service, cfg *config.Config, clk clock.Clock, logger *slog.Logger) *Sweeper {
	if clk == nil {
		clk = clock.System
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Sweeper{
		store:        store,
		notifier:     notifier,
		policy:       sla.FromConfig(cfg),
		logger:       logger.With(logging.String(logging.FieldComponent, "sweeper")),
		clk:          clk,
		interval:     time.Duration(cfg.Sweep.IntervalSeconds) * time.Second,
		overdueEvery: time.Duration(cfg.Sweep.OverdueCheckMinutes) * time.Minute,
		alertDedup:   time.Duration(cfg.Sweep.AlertDedupMinutes) * time.Minute,
		alerted:      make(map[int64]time.Time),
	}
}

// Run loops until the context is cancelled, sweeping on the configured
// interval. A failed pass is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", logging.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				s.logger.Warn("sweep pass failed", logging.Error(err))
			}
		}
	}
}

// RunOnce performs one reconciliation pass and returns the claims it cleared.
func (s *Sweeper) RunOnce(ctx context.Context) ([]queue.SweptClaim, error) {
	now := s.clk.Now()

	swept, err := s.store.SweepExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, claim := range swept {
		s.logger.Info("expired claim cleared",
			logging.Int64(logging.FieldItemID, claim.ItemID),
			logging.String(logging.FieldWorker, claim.Worker),
			logging.String(logging.FieldStage, string(claim.Stage)))
		s.notifyExpired(ctx, claim)
	}

	if s.shouldCheckOverdue(now) {
		if err := s.checkOverdue(ctx, now); err != nil {
			s.logger.Warn("overdue check failed", logging.Error(err))
		}
	}
	return swept, nil
}

func (s *Sweeper) notifyExpired(ctx context.Context, claim queue.SweptClaim) {
	item, err := s.store.GetByID(ctx, claim.ItemID)
	if err != nil || item == nil {
		return
	}
	if err := s.notifier.NotifyClaimExpired(ctx, item.Title, claim.Worker, string(claim.Stage)); err != nil {
		s.logger.Warn("claim expiry notification failed",
			logging.Int64(logging.FieldItemID, claim.ItemID),
			logging.Error(err))
	}
}

func (s *Sweeper) shouldCheckOverdue(now time.Time) bool {
	if s.overdueEvery <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastOverdue.IsZero() && now.Sub(s.lastOverdue) < s.overdueEvery {
		return false
	}
	s.lastOverdue = now
	return true
}

// checkOverdue alerts on items past their stage deadline, at most once per
// item within the dedup window.
func (s *Sweeper) checkOverdue(ctx context.Context, now time.Time) error {
	items, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		if s.policy.Status(item, now) != sla.StatusOverdue {
			continue
		}
		if !s.shouldAlert(item.ID, now) {
			continue
		}
		deadline, ok := s.policy.Deadline(item)
		if !ok {
			continue
		}
		late := now.Sub(deadline)
		s.logger.Warn("item overdue",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldStage, string(item.Stage)),
			logging.Duration("late", late))
		if err := s.notifier.NotifyOverdue(ctx, item.Title, string(item.Stage), late); err != nil {
			s.logger.Warn("overdue notification failed",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Error(err))
		}
	}
	return nil
}

func (s *Sweeper) shouldAlert(itemID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.alerted[itemID]; ok && now.Sub(last) < s.alertDedup {
		return false
	}
	s.alerted[itemID] = now
	return true
}
