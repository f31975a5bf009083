package testsupport

import (
	"context"
	"testing"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates a work item for tests using the provided store.
func NewItem(t testing.TB, store *queue.Store, title string, now time.Time) *queue.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), title, "tester", now)
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}

// ItemAtStage creates a work item and walks it to the target stage with
// content fields populated as each transition requires. It moves the item as
// an admin so no claims are needed.
func ItemAtStage(t testing.TB, store *queue.Store, title string, target queue.Stage, now time.Time) *queue.Item {
	t.Helper()

	item := NewItem(t, store, title, now)
	admin := queue.Actor{Worker: "admin", Admin: true}
	ctx := context.Background()

	for item.Stage != target {
		rule, ok := queue.RuleFor(item.Stage)
		if !ok || len(rule.Targets) == 0 {
			t.Fatalf("no path from %s to %s", item.Stage, target)
		}
		next := rule.Targets[0]

		fillRequiredFields(item, rule.RequiredFields[next])
		if err := store.UpdateContent(ctx, item, now); err != nil {
			t.Fatalf("store.UpdateContent: %v", err)
		}

		advanced, err := store.AdvanceStage(ctx, item.ID, item.Stage, next, admin, now)
		if err != nil {
			t.Fatalf("advance %s to %s: %v", item.Stage, next, err)
		}
		item = advanced
	}
	return item
}

func fillRequiredFields(item *queue.Item, fields []string) {
	for _, field := range fields {
		switch field {
		case queue.FieldLockedScript:
			item.ScriptLocked = true
		case queue.FieldFinalDeliverableURL:
			item.FinalDeliverableURL = "https://files.example.com/final.mp4"
		case queue.FieldPostingCaption:
			item.PostingCaption = "Test caption"
		case queue.FieldPostingPlatforms:
			item.PostingPlatforms = "youtube,tiktok"
		}
	}
}

// MustClaim claims an item for tests and fails fast on error.
func MustClaim(t testing.TB, store *queue.Store, id int64, worker string, role queue.Role, ttl time.Duration, now time.Time) *queue.Item {
	t.Helper()

	item, err := store.Claim(context.Background(), id, worker, role, ttl, now)
	if err != nil {
		t.Fatalf("store.Claim: %v", err)
	}
	return item
}
