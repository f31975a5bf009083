package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"clipflow/internal/clock"
	"clipflow/internal/notifications"
	"clipflow/internal/queue"
	"clipflow/internal/testsupport"
	"clipflow/internal/workflow"
)

type recordingNotifier struct {
	mu       sync.Mutex
	expired  []string
	overdue  []string
	reassign []string
}

func (r *recordingNotifier) NotifyClaimExpired(_ context.Context, title, worker, stage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, title)
	return nil
}

func (r *recordingNotifier) NotifyOverdue(_ context.Context, title, stage string, late time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overdue = append(r.overdue, title)
	return nil
}

func (r *recordingNotifier) NotifyReassigned(_ context.Context, title, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reassign = append(r.reassign, title)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

var _ notifications.Service = (*recordingNotifier)(nil)

func TestSweeperClearsExpiredClaims(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	notifier := &recordingNotifier{}

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, start)
	testsupport.MustClaim(t, store, item.ID, "alice", queue.RoleRecorder, 30*time.Minute, start)

	sweeper := workflow.NewSweeper(store, notifier, cfg, clk, nil)

	// Claim still live: nothing to sweep.
	swept, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(swept) != 0 {
		t.Fatalf("expected no swept claims, got %d", len(swept))
	}

	clk.Advance(31 * time.Minute)
	swept, err = sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce after expiry: %v", err)
	}
	if len(swept) != 1 || swept[0].ItemID != item.ID {
		t.Fatalf("expected item %d swept, got %+v", item.ID, swept)
	}
	if len(notifier.expired) != 1 || notifier.expired[0] != "Morning Clip" {
		t.Fatalf("expected one expiry notification, got %v", notifier.expired)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.ClaimedBy != "" {
		t.Fatalf("expected claim cleared, still held by %q", refreshed.ClaimedBy)
	}
	if refreshed.AssignmentState != queue.AssignmentExpired {
		t.Fatalf("expected assignment_state expired, got %s", refreshed.AssignmentState)
	}
	if !refreshed.Available(clk.Now()) {
		t.Fatal("expected item claimable again after sweep")
	}
}

func TestSweeperRunOnceIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, start)
	testsupport.MustClaim(t, store, item.ID, "alice", queue.RoleRecorder, 10*time.Minute, start)
	clk.Advance(time.Hour)

	sweeper := workflow.NewSweeper(store, &recordingNotifier{}, cfg, clk, nil)

	first, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one swept claim, got %d", len(first))
	}

	second, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected second sweep to clear nothing, got %d", len(second))
	}

	events, err := store.AuditEvents(context.Background(), item.ID, 50)
	if err != nil {
		t.Fatalf("AuditEvents: %v", err)
	}
	expiredEvents := 0
	for _, event := range events {
		if event.EventType == "claim_expired" {
			expiredEvents++
		}
	}
	if expiredEvents != 1 {
		t.Fatalf("expected exactly one claim_expired event, got %d", expiredEvents)
	}
}

func TestSweeperDeduplicatesOverdueAlerts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sweep.OverdueCheckMinutes = 1
	cfg.Sweep.AlertDedupMinutes = 240
	store := testsupport.MustOpenStore(t, cfg)
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	notifier := &recordingNotifier{}

	testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, start)

	sweeper := workflow.NewSweeper(store, notifier, cfg, clk, nil)

	// not_recorded carries a 4h deadline; push well past it.
	clk.Advance(5 * time.Hour)
	if _, err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(notifier.overdue) != 1 {
		t.Fatalf("expected one overdue alert, got %d", len(notifier.overdue))
	}

	// Within the dedup window: no second alert for the same item.
	clk.Advance(10 * time.Minute)
	if _, err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce within dedup window: %v", err)
	}
	if len(notifier.overdue) != 1 {
		t.Fatalf("expected alert deduplicated, got %d", len(notifier.overdue))
	}

	// Past the dedup window the alert fires again.
	clk.Advance(5 * time.Hour)
	if _, err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce past dedup window: %v", err)
	}
	if len(notifier.overdue) != 2 {
		t.Fatalf("expected second overdue alert, got %d", len(notifier.overdue))
	}
}
