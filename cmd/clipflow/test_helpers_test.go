package main

import (
	"context"
	"testing"
	"time"

	"clipflow/internal/queue"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// seedToStage walks an existing item to the target stage as an admin,
// filling required content fields along the way.
func seedToStage(t *testing.T, store *queue.Store, id int64, target queue.Stage) {
	t.Helper()

	ctx := context.Background()
	admin := queue.Actor{Worker: "admin", Admin: true}

	for {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item == nil {
			t.Fatalf("item %d not found", id)
		}
		if item.Stage == target {
			return
		}
		rule, ok := queue.RuleFor(item.Stage)
		if !ok || len(rule.Targets) == 0 {
			t.Fatalf("no path from %s to %s", item.Stage, target)
		}
		next := rule.Targets[0]

		changed := false
		for _, field := range rule.RequiredFields[next] {
			switch field {
			case queue.FieldLockedScript:
				item.ScriptLocked = true
			case queue.FieldFinalDeliverableURL:
				item.FinalDeliverableURL = "https://files.example.com/final.mp4"
			case queue.FieldPostingCaption:
				item.PostingCaption = "Caption"
			case queue.FieldPostingPlatforms:
				item.PostingPlatforms = "youtube"
			}
			changed = true
		}
		if changed {
			if err := store.UpdateContent(ctx, item, nowUTC()); err != nil {
				t.Fatalf("UpdateContent: %v", err)
			}
		}

		if _, err := store.AdvanceStage(ctx, id, item.Stage, next, admin, nowUTC()); err != nil {
			t.Fatalf("advance %s to %s: %v", item.Stage, next, err)
		}
	}
}
