package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event types recorded by claim and transition operations.
const (
	EventCreated         = "created"
	EventClaimed         = "claimed"
	EventReleased        = "released"
	EventExtended        = "extended"
	EventReassigned      = "reassigned"
	EventClaimExpired    = "claim_expired"
	EventTransitioned    = "transitioned"
	EventPriorityChanged = "priority_changed"
)

// SystemActor marks events produced by background jobs rather than a worker.
const SystemActor = "system"

// Event is one append-only audit record.
type Event struct {
	ID            int64     `json:"id,omitempty"`
	ItemID        int64     `json:"itemId"`
	EventType     string    `json:"eventType"`
	Actor         string    `json:"actor"`
	FromStage     string    `json:"fromStage,omitempty"`
	ToStage       string    `json:"toStage,omitempty"`
	CorrelationID string    `json:"correlationId"`
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// New builds an event with a fresh correlation id and the provided timestamp.
func New(itemID int64, eventType, actor string, now time.Time) Event {
	return Event{
		ItemID:        itemID,
		EventType:     eventType,
		Actor:         actor,
		CorrelationID: uuid.NewString(),
		CreatedAt:     now.UTC(),
	}
}
