package api

import (
	"time"

	"clipflow/internal/queue"
	"clipflow/internal/sla"
	"clipflow/internal/stage"
)

func itemToAPI(item *queue.Item) WorkItem {
	out := WorkItem{
		ID:               item.ID,
		Title:            item.Title,
		Stage:            string(item.Stage),
		Lane:             string(queue.LaneForStage(item.Stage)),
		StageEnteredAt:   formatTimestamp(item.StageEnteredAt),
		CreatedAt:        formatTimestamp(item.CreatedAt),
		UpdatedAt:        formatTimestamp(item.UpdatedAt),
		ScriptLocked:     item.ScriptLocked,
		FinalDeliverable: item.FinalDeliverableURL,
		PostingCaption:   item.PostingCaption,
		PostingPlatforms: item.PostingPlatforms,
		ClaimedBy:        item.ClaimedBy,
		ClaimRole:        string(item.ClaimRole),
		AssignmentState:  string(item.AssignmentState),
		ExplicitPriority: string(item.ExplicitPriority),
	}
	if item.ClaimedAt != nil {
		out.ClaimedAt = formatTimestamp(*item.ClaimedAt)
	}
	if item.ClaimExpiresAt != nil {
		out.ClaimExpiresAt = formatTimestamp(*item.ClaimExpiresAt)
	}
	return out
}

// entryForViewer builds the full queue entry for one item as seen by the
// given actor. Availability is derived from the claim columns at call time so
// a lapsed claim reads as available without waiting for the sweeper.
func entryForViewer(item *queue.Item, actor queue.Actor, policy sla.Policy, now time.Time) QueueEntry {
	entry := QueueEntry{
		Item:              itemToAPI(item),
		IsMine:            item.ClaimedActivelyBy(actor.Worker, now),
		IsAvailable:       item.Available(now),
		AgeMinutesInStage: sla.AgeMinutes(item, now),
		PriorityScore:     policy.Score(item, now),
		SLAStatus:         string(policy.Status(item, now)),
	}
	entry.IsLockedByOther = item.ClaimActive(now) && !entry.IsMine

	if deadline, ok := policy.Deadline(item); ok {
		entry.SLADeadlineAt = formatTimestamp(deadline)
	}

	if action := stage.NextAction(item); action.TargetStage != "" {
		entry.NextAction = action.Label
		entry.NextStage = string(action.TargetStage)
		entry.RequiredFields = action.RequiredFields

		decision := stage.CanTransition(item, action.TargetStage, actor, now)
		entry.CanMoveNext = decision.Allowed
		if !decision.Allowed {
			entry.BlockedReason = string(decision.Reason)
			if len(decision.MissingFields) > 0 {
				entry.RequiredFields = decision.MissingFields
			}
		}
	}
	return entry
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
