package api

import (
	"context"
	"fmt"

	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/queue"
	"clipflow/internal/sla"
)

// QueueService builds per-role and admin-facing read models over the queue
// store. It holds no state of its own; every call re-reads the store and
// re-derives availability and scores.
type QueueService struct {
	store  *queue.Store
	policy sla.Policy
	cfg    *config.Config
	clk    clock.Clock
}

// NewQueueService constructs a QueueService.
func NewQueueService(store *queue.Store, cfg *config.Config, clk clock.Clock) *QueueService {
	if clk == nil {
		clk = clock.System
	}
	return &QueueService{
		store:  store,
		policy: sla.FromConfig(cfg),
		cfg:    cfg,
		clk:    clk,
	}
}

// ForRole returns the sorted queue view for one role and viewer: items in the
// role's claimable stage with the viewer's own claims first, then available
// items, then items locked by someone else.
func (s *QueueService) ForRole(ctx context.Context, role queue.Role, worker string) ([]QueueEntry, error) {
	stage, ok := queue.StageForRole(role)
	if !ok {
		return nil, fmt.Errorf("no claimable stage for role %q", role)
	}
	items, err := s.store.List(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("list %s queue: %w", role, err)
	}

	actor := s.actor(worker, role)
	now := s.clk.Now()
	entries := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, entryForViewer(item, actor, s.policy, now))
	}
	sortQueueEntries(entries)
	return entries, nil
}

// ListAll returns entries for every item across all stages, sorted like a
// role queue. Used by the admin status view.
func (s *QueueService) ListAll(ctx context.Context, worker string) ([]QueueEntry, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}

	actor := s.actor(worker, "")
	now := s.clk.Now()
	entries := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, entryForViewer(item, actor, s.policy, now))
	}
	sortQueueEntries(entries)
	return entries, nil
}

// Describe returns the full entry for one item as seen by the viewer.
func (s *QueueService) Describe(ctx context.Context, id int64, worker string, role queue.Role) (QueueEntry, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return QueueEntry{}, err
	}
	if item == nil {
		return QueueEntry{}, queue.ErrNotFound
	}
	return entryForViewer(item, s.actor(worker, role), s.policy, s.clk.Now()), nil
}

// Stats returns per-stage item counts keyed by stage name.
func (s *QueueService) Stats(ctx context.Context) (QueueStatsResponse, error) {
	counts, err := s.store.Stats(ctx)
	if err != nil {
		return QueueStatsResponse{}, err
	}
	out := QueueStatsResponse{Counts: make(map[string]int, len(counts))}
	for stage, count := range counts {
		out.Counts[string(stage)] = count
	}
	return out, nil
}

// Health returns the aggregated queue lifecycle counts.
func (s *QueueService) Health(ctx context.Context) (queue.HealthSummary, error) {
	return s.store.Health(ctx, s.clk.Now())
}

// AuditTrail returns the newest-first audit events for an item.
func (s *QueueService) AuditTrail(ctx context.Context, id int64, limit int) ([]AuditEntry, error) {
	events, err := s.store.AuditEvents(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]AuditEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, AuditEntry{
			ID:            event.ID,
			ItemID:        event.ItemID,
			EventType:     event.EventType,
			Actor:         event.Actor,
			FromStage:     event.FromStage,
			ToStage:       event.ToStage,
			CorrelationID: event.CorrelationID,
			Details:       event.Details,
			CreatedAt:     formatTimestamp(event.CreatedAt),
		})
	}
	return entries, nil
}

func (s *QueueService) actor(worker string, role queue.Role) queue.Actor {
	return queue.Actor{
		Worker: worker,
		Role:   role,
		Admin:  s.cfg.IsAdmin(worker),
	}
}
