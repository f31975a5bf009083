package api

import "sort"

// sortQueueEntries orders a queue view for presentation: the viewer's own
// claims first, then claimable items, then items locked by someone else.
// Within each group higher priority scores come first; ties fall back to
// created_at ascending, then id, so the ordering is total and stable across
// polls with a fixed clock.
func sortQueueEntries(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		if ga, gb := entryGroup(a), entryGroup(b); ga != gb {
			return ga < gb
		}
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if a.Item.CreatedAt != b.Item.CreatedAt {
			return a.Item.CreatedAt < b.Item.CreatedAt
		}
		return a.Item.ID < b.Item.ID
	})
}

func entryGroup(e QueueEntry) int {
	switch {
	case e.IsMine:
		return 0
	case e.IsAvailable:
		return 1
	default:
		return 2
	}
}
