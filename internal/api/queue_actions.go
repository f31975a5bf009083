package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/notifications"
	"clipflow/internal/queue"
	"clipflow/internal/stage"
	"clipflow/internal/textutil"
)

// Actions is the write surface over the queue: claim lifecycle, stage
// transitions, content updates, and the sweep. Authorization is resolved
// here from configuration; the store trusts the Actor it receives.
type Actions struct {
	store    *queue.Store
	cfg      *config.Config
	notifier notifications.Service
	clk      clock.Clock
	logger   *slog.Logger
}

// NewActions constructs the action surface. A nil notifier falls back to the
// configured notification service.
func NewActions(store *queue.Store, cfg *config.Config, notifier notifications.Service, clk clock.Clock, logger *slog.Logger) *Actions {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if clk == nil {
		clk = clock.System
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Actions{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		clk:      clk,
		logger:   logger.With(logging.String(logging.FieldComponent, "actions")),
	}
}

// AddItem creates a new work item at the start of the pipeline.
func (a *Actions) AddItem(ctx context.Context, title, worker string) (WorkItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return WorkItem{}, fmt.Errorf("title required")
	}
	a.warnOnDuplicateTitle(ctx, title)

	item, err := a.store.NewItem(ctx, title, worker, a.clk.Now())
	if err != nil {
		return WorkItem{}, err
	}
	a.logger.Info("item added",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldWorker, worker))
	return itemToAPI(item), nil
}

// Claim takes an exclusive claim on an item for a worker acting in role,
// using the role's configured TTL. An empty role is inferred from the item's
// stage.
func (a *Actions) Claim(ctx context.Context, id int64, worker string, role queue.Role) (WorkItem, error) {
	role, err := a.resolveRole(ctx, id, role)
	if err != nil {
		return WorkItem{}, err
	}
	ttl := a.cfg.ClaimTTL(string(role))
	item, err := a.store.Claim(ctx, id, worker, role, ttl, a.clk.Now())
	if err != nil {
		return WorkItem{}, err
	}
	a.logger.Info("item claimed",
		logging.Int64(logging.FieldItemID, id),
		logging.String(logging.FieldWorker, worker),
		logging.String(logging.FieldRole, string(role)),
		logging.Duration("ttl", ttl))
	return itemToAPI(item), nil
}

// Release drops a claim. Workers may release only their own claims; admins
// may release anyone's.
func (a *Actions) Release(ctx context.Context, id int64, worker string, role queue.Role) error {
	if err := a.store.Release(ctx, id, a.actor(worker, role), a.clk.Now()); err != nil {
		return err
	}
	a.logger.Info("claim released",
		logging.Int64(logging.FieldItemID, id),
		logging.String(logging.FieldWorker, worker))
	return nil
}

// Extend sets the claim deadline to now plus the requested TTL, admin only.
// A zero ttlMinutes falls back to the role's configured TTL.
func (a *Actions) Extend(ctx context.Context, id int64, worker string, role queue.Role, ttlMinutes int) error {
	ttl := a.claimTTL(role, ttlMinutes)
	if err := a.store.ExtendClaim(ctx, id, ttl, a.actor(worker, role), a.clk.Now()); err != nil {
		return err
	}
	a.logger.Info("claim extended",
		logging.Int64(logging.FieldItemID, id),
		logging.String(logging.FieldWorker, worker),
		logging.Duration("ttl", ttl))
	return nil
}

// Reassign moves a claim to another worker, admin only. The new claim gets a
// fresh TTL: the requested minutes, or the target role's configured TTL when
// zero. The displaced holder is notified best-effort after the store commits.
func (a *Actions) Reassign(ctx context.Context, id int64, toWorker string, toRole queue.Role, ttlMinutes int, notes, requestedBy string) (WorkItem, error) {
	prior, err := a.store.GetByID(ctx, id)
	if err != nil {
		return WorkItem{}, err
	}
	toRole, err = a.resolveRole(ctx, id, toRole)
	if err != nil {
		return WorkItem{}, err
	}
	actor := a.actor(requestedBy, "")
	ttl := a.claimTTL(toRole, ttlMinutes)
	item, err := a.store.Reassign(ctx, id, toWorker, toRole, ttl, notes, actor, a.clk.Now())
	if err != nil {
		return WorkItem{}, err
	}
	a.logger.Info("item reassigned",
		logging.Int64(logging.FieldItemID, id),
		logging.String("to_worker", toWorker),
		logging.String(logging.FieldRole, string(toRole)),
		logging.String("requested_by", requestedBy))
	if notifyErr := a.notifier.NotifyReassigned(ctx, item.Title, prior.ClaimedBy, toWorker); notifyErr != nil {
		a.logger.Warn("reassignment notification failed",
			logging.Int64(logging.FieldItemID, id),
			logging.Error(notifyErr))
	}
	return itemToAPI(item), nil
}

// Advance moves an item to the target stage after the transition guard
// approves. Passing target "" advances along the happy path.
func (a *Actions) Advance(ctx context.Context, id int64, target queue.Stage, worker string, role queue.Role) (WorkItem, error) {
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return WorkItem{}, err
	}
	if item == nil {
		return WorkItem{}, queue.ErrNotFound
	}

	now := a.clk.Now()
	if target == "" {
		rule, ok := queue.RuleFor(item.Stage)
		if !ok || rule.PrimaryTarget() == "" {
			return WorkItem{}, fmt.Errorf("%w: %s is terminal", queue.ErrInvalidTransition, item.Stage)
		}
		target = rule.PrimaryTarget()
	}

	if role == "" {
		if rule, ok := queue.RuleFor(item.Stage); ok {
			role = rule.RequiredRole
		}
	}
	actor := a.actor(worker, role)
	decision := stage.CanTransition(item, target, actor, now)
	if !decision.Allowed {
		return WorkItem{}, transitionError(decision, item.Stage, target)
	}

	updated, err := a.store.AdvanceStage(ctx, id, item.Stage, target, actor, now)
	if err != nil {
		return WorkItem{}, err
	}
	a.logger.Info("item advanced",
		logging.Int64(logging.FieldItemID, id),
		logging.String(logging.FieldStage, string(target)),
		logging.String(logging.FieldWorker, worker))
	return itemToAPI(updated), nil
}

// ContentUpdate carries optional content field changes; nil pointers leave
// the current value untouched.
type ContentUpdate struct {
	ScriptLocked        *bool
	FinalDeliverableURL *string
	PostingCaption      *string
	PostingPlatforms    *string
}

// SetContent updates guarded content fields on an item.
func (a *Actions) SetContent(ctx context.Context, id int64, update ContentUpdate) (WorkItem, error) {
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return WorkItem{}, err
	}
	if item == nil {
		return WorkItem{}, queue.ErrNotFound
	}

	if update.ScriptLocked != nil {
		item.ScriptLocked = *update.ScriptLocked
	}
	if update.FinalDeliverableURL != nil {
		item.FinalDeliverableURL = strings.TrimSpace(*update.FinalDeliverableURL)
	}
	if update.PostingCaption != nil {
		item.PostingCaption = *update.PostingCaption
	}
	if update.PostingPlatforms != nil {
		item.PostingPlatforms = strings.TrimSpace(*update.PostingPlatforms)
	}

	if err := a.store.UpdateContent(ctx, item, a.clk.Now()); err != nil {
		return WorkItem{}, err
	}
	return itemToAPI(item), nil
}

// SetPriority sets the explicit priority override, admin only.
func (a *Actions) SetPriority(ctx context.Context, id int64, level queue.PriorityLevel, requestedBy string) error {
	actor := a.actor(requestedBy, "")
	if err := a.store.SetExplicitPriority(ctx, id, level, actor, a.clk.Now()); err != nil {
		return err
	}
	a.logger.Info("priority set",
		logging.Int64(logging.FieldItemID, id),
		logging.String("level", string(level)),
		logging.String("requested_by", requestedBy))
	return nil
}

// Sweep clears every lapsed claim and reports what was released.
func (a *Actions) Sweep(ctx context.Context) (SweepResult, []queue.SweptClaim, error) {
	swept, err := a.store.SweepExpired(ctx, a.clk.Now())
	if err != nil {
		return SweepResult{}, nil, err
	}
	result := SweepResult{SweptItemIDs: make([]int64, 0, len(swept))}
	for _, claim := range swept {
		result.SweptItemIDs = append(result.SweptItemIDs, claim.ItemID)
		a.logger.Info("expired claim swept",
			logging.Int64(logging.FieldItemID, claim.ItemID),
			logging.String(logging.FieldWorker, claim.Worker),
			logging.String(logging.FieldStage, string(claim.Stage)))
	}
	return result, swept, nil
}

// duplicateTitleThreshold is the cosine similarity above which two titles
// are treated as the same piece of work.
const duplicateTitleThreshold = 0.85

// warnOnDuplicateTitle flags likely re-ingestion of an item already in
// flight. Detection is advisory: duplicates are logged, never rejected,
// since near-identical titles are sometimes intentional (episode parts).
func (a *Actions) warnOnDuplicateTitle(ctx context.Context, title string) {
	items, err := a.store.List(ctx)
	if err != nil {
		return
	}
	for _, item := range items {
		if item.Stage.IsTerminal() {
			continue
		}
		if textutil.TitleSimilarity(title, item.Title) >= duplicateTitleThreshold {
			a.logger.Warn("title closely matches an item already in the pipeline",
				logging.String("title", title),
				logging.Int64("existing_item_id", item.ID),
				logging.String("existing_title", item.Title))
			return
		}
	}
}

// claimTTL resolves a caller-supplied TTL in minutes, falling back to the
// role's configured TTL when the caller passed zero.
func (a *Actions) claimTTL(role queue.Role, ttlMinutes int) time.Duration {
	if ttlMinutes > 0 {
		return time.Duration(ttlMinutes) * time.Minute
	}
	return a.cfg.ClaimTTL(string(role))
}

// resolveRole falls back to the required role of the item's current stage
// when the caller did not specify one.
func (a *Actions) resolveRole(ctx context.Context, id int64, role queue.Role) (queue.Role, error) {
	if role != "" {
		return role, nil
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", queue.ErrNotFound
	}
	rule, ok := queue.RuleFor(item.Stage)
	if !ok || rule.RequiredRole == "" {
		return "", fmt.Errorf("%w: stage %s has no worker role", queue.ErrNotClaimable, item.Stage)
	}
	return rule.RequiredRole, nil
}

func (a *Actions) actor(worker string, role queue.Role) queue.Actor {
	return queue.Actor{
		Worker: worker,
		Role:   role,
		Admin:  a.cfg.IsAdmin(worker),
	}
}

func transitionError(decision stage.Decision, from, to queue.Stage) error {
	switch decision.Reason {
	case stage.ReasonWrongRole:
		return fmt.Errorf("%w: %s to %s", queue.ErrRoleMismatch, from, to)
	case stage.ReasonNotClaimed:
		return fmt.Errorf("%w: %s to %s", queue.ErrNotClaimHolder, from, to)
	case stage.ReasonMissingFields:
		return queue.NewMissingFields(decision.MissingFields)
	default:
		return fmt.Errorf("%w: %s to %s", queue.ErrInvalidTransition, from, to)
	}
}
