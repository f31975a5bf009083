package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipflow/internal/queue"
	"clipflow/internal/testsupport"
)

func TestNewItemStartsAtGeneratingScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "Morning Clip", "tester", testStart)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.Stage != queue.StageGeneratingScript {
		t.Fatalf("expected generating_script, got %s", item.Stage)
	}
	if !item.CreatedAt.Equal(testStart) || !item.StageEnteredAt.Equal(testStart) {
		t.Fatalf("unexpected timestamps: created=%v entered=%v", item.CreatedAt, item.StageEnteredAt)
	}
	if item.ExplicitPriority != queue.PriorityNormal {
		t.Fatalf("expected normal priority, got %s", item.ExplicitPriority)
	}
	if item.AssignmentState != queue.AssignmentUnassigned {
		t.Fatalf("expected unassigned, got %s", item.AssignmentState)
	}

	if _, err := store.NewItem(ctx, "", "tester", testStart); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestGetByIDUnknownItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetByID(context.Background(), 9999); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersByStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewItem(t, store, "Draft", testStart)
	recorded := testsupport.ItemAtStage(t, store, "Recorded", queue.StageRecorded, testStart)

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	onlyRecorded, err := store.List(ctx, queue.StageRecorded)
	if err != nil {
		t.Fatalf("List(recorded): %v", err)
	}
	if len(onlyRecorded) != 1 || onlyRecorded[0].ID != recorded.ID {
		t.Fatalf("unexpected filtered list: %+v", onlyRecorded)
	}
}

func TestUpdateContentRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewItem(t, store, "Morning Clip", testStart)
	item.ScriptLocked = true
	item.FinalDeliverableURL = "https://files.example.com/final.mp4"
	item.PostingCaption = "Morning clip, fresh out of the edit bay"
	item.PostingPlatforms = "youtube,tiktok"

	if err := store.UpdateContent(ctx, item, testStart.Add(time.Minute)); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.ScriptLocked {
		t.Fatal("expected script_locked set")
	}
	if got.FinalDeliverableURL != item.FinalDeliverableURL {
		t.Fatalf("unexpected deliverable url: %q", got.FinalDeliverableURL)
	}
	if got.PostingCaption != item.PostingCaption || got.PostingPlatforms != item.PostingPlatforms {
		t.Fatalf("unexpected posting metadata: %#v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updated_at to move, got %v", got.UpdatedAt)
	}
}

func TestSetExplicitPriorityRequiresAdmin(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewItem(t, store, "Morning Clip", testStart)

	worker := queue.Actor{Worker: "alice", Role: queue.RoleRecorder}
	if err := store.SetExplicitPriority(ctx, item.ID, queue.PriorityUrgent, worker, testStart); !errors.Is(err, queue.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	admin := queue.Actor{Worker: "admin", Admin: true}
	if err := store.SetExplicitPriority(ctx, item.ID, queue.PriorityUrgent, admin, testStart); err != nil {
		t.Fatalf("admin set priority: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ExplicitPriority != queue.PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got.ExplicitPriority)
	}
}

func TestAdvanceStageClearsClaimAndCompletesAssignment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, testStart)
	testsupport.MustClaim(t, store, item.ID, "alice", queue.RoleRecorder, time.Hour, testStart)

	actor := queue.Actor{Worker: "alice", Role: queue.RoleRecorder}
	advanceAt := testStart.Add(20 * time.Minute)
	advanced, err := store.AdvanceStage(ctx, item.ID, queue.StageNotRecorded, queue.StageRecorded, actor, advanceAt)
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if advanced.Stage != queue.StageRecorded {
		t.Fatalf("expected recorded, got %s", advanced.Stage)
	}
	if !advanced.StageEnteredAt.Equal(advanceAt) {
		t.Fatalf("expected stage_entered_at reset, got %v", advanced.StageEnteredAt)
	}
	if advanced.ClaimedBy != "" || advanced.ClaimExpiresAt != nil {
		t.Fatalf("expected claim cleared, got %#v", advanced)
	}
	if advanced.AssignmentState != queue.AssignmentCompleted {
		t.Fatalf("expected completed, got %s", advanced.AssignmentState)
	}
}

func TestAdvanceStageIsCompareAndSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, testStart)

	admin := queue.Actor{Worker: "admin", Admin: true}
	if _, err := store.AdvanceStage(ctx, item.ID, queue.StageNotRecorded, queue.StageRecorded, admin, testStart); err != nil {
		t.Fatalf("first advance: %v", err)
	}

	// The item already left not_recorded, so a stale advance must fail.
	if _, err := store.AdvanceStage(ctx, item.ID, queue.StageNotRecorded, queue.StageRecorded, admin, testStart); !errors.Is(err, queue.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAuditEventsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, testStart)
	testsupport.MustClaim(t, store, item.ID, "alice", queue.RoleRecorder, time.Hour, testStart)

	events, err := store.AuditEvents(ctx, item.ID, 50)
	if err != nil {
		t.Fatalf("AuditEvents: %v", err)
	}
	if len(events) < 3 {
		t.Fatalf("expected created/transitioned/claimed events, got %d", len(events))
	}
	if events[0].EventType != "claimed" {
		t.Fatalf("expected newest event first, got %s", events[0].EventType)
	}
	if events[len(events)-1].EventType != "created" {
		t.Fatalf("expected created event last, got %s", events[len(events)-1].EventType)
	}

	limited, err := store.AuditEvents(ctx, item.ID, 1)
	if err != nil {
		t.Fatalf("AuditEvents limited: %v", err)
	}
	if len(limited) != 1 || limited[0].EventType != "claimed" {
		t.Fatalf("unexpected limited trail: %+v", limited)
	}
}

func TestStatsCountsPerStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewItem(t, store, "Draft A", testStart)
	testsupport.NewItem(t, store, "Draft B", testStart)
	testsupport.ItemAtStage(t, store, "Waiting", queue.StageNotRecorded, testStart)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StageGeneratingScript] != 2 {
		t.Fatalf("expected 2 in generating_script, got %d", stats[queue.StageGeneratingScript])
	}
	if stats[queue.StageNotRecorded] != 1 {
		t.Fatalf("expected 1 in not_recorded, got %d", stats[queue.StageNotRecorded])
	}
}

func TestHealthUsesClaimExpiryAtNow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.ItemAtStage(t, store, "Morning Clip", queue.StageNotRecorded, testStart)
	testsupport.MustClaim(t, store, item.ID, "alice", queue.RoleRecorder, 30*time.Minute, testStart)

	healthy, err := store.Health(ctx, testStart.Add(time.Minute))
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if healthy.Claimed != 1 || healthy.Claimable != 0 {
		t.Fatalf("expected one active claim, got %+v", healthy)
	}

	// Past expiry the same row counts as claimable even before the sweep.
	lapsed, err := store.Health(ctx, testStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("Health after expiry: %v", err)
	}
	if lapsed.Claimed != 0 || lapsed.Claimable != 1 {
		t.Fatalf("expected lapsed claim to read claimable, got %+v", lapsed)
	}
}
