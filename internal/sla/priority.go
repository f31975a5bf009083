package sla

import (
	"time"

	"clipflow/internal/queue"
)

// Status is where an item sits relative to its stage deadline. Values only
// move forward as now advances.
type Status string

const (
	StatusOnTrack Status = "on_track"
	StatusDueSoon Status = "due_soon"
	StatusOverdue Status = "overdue"
	// StatusNone marks stages without an SLA (terminal).
	StatusNone Status = "none"
)

// AgeMinutes returns how long the item has been in its current stage.
func AgeMinutes(item *queue.Item, now time.Time) float64 {
	if item == nil || item.StageEnteredAt.IsZero() {
		return 0
	}
	age := now.Sub(item.StageEnteredAt)
	if age < 0 {
		return 0
	}
	return age.Minutes()
}

// Deadline returns the SLA deadline for the item's current stage, or false
// when the stage carries no SLA.
func (p Policy) Deadline(item *queue.Item) (time.Time, bool) {
	if item == nil || item.StageEnteredAt.IsZero() {
		return time.Time{}, false
	}
	duration, ok := p.DurationFor(item.Stage)
	if !ok {
		return time.Time{}, false
	}
	return item.StageEnteredAt.Add(duration), true
}

// Status classifies the item against its deadline at now:
// on_track before the warning window opens, due_soon inside it, and overdue
// once now reaches the deadline.
func (p Policy) Status(item *queue.Item, now time.Time) Status {
	deadline, ok := p.Deadline(item)
	if !ok {
		return StatusNone
	}
	switch {
	case !now.Before(deadline):
		return StatusOverdue
	case !now.Before(deadline.Add(-p.WarnWindow)):
		return StatusDueSoon
	default:
		return StatusOnTrack
	}
}

// Score ranks an item for queue ordering. It is monotone non-decreasing in
// stage age and SLA urgency, and the explicit admin priority adds a fixed
// bump, so an urgent overdue item always outranks a fresh on-track one.
// Ties are broken outside the score by created_at ascending.
func (p Policy) Score(item *queue.Item, now time.Time) float64 {
	score := p.AgeWeight * AgeMinutes(item, now)

	switch p.Status(item, now) {
	case StatusDueSoon:
		score += p.DueSoonBump
	case StatusOverdue:
		score += p.OverdueBump
	}

	switch item.ExplicitPriority {
	case queue.PriorityHigh:
		score += p.HighBump
	case queue.PriorityUrgent:
		score += p.UrgentBump
	}

	return score
}
