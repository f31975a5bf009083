package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// WorkItem describes a work item in a transport-friendly format.
type WorkItem struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Stage            string `json:"stage"`
	Lane             string `json:"lane"`
	StageEnteredAt   string `json:"stageEnteredAt,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
	ScriptLocked     bool   `json:"scriptLocked"`
	FinalDeliverable string `json:"finalDeliverableUrl,omitempty"`
	PostingCaption   string `json:"postingCaption,omitempty"`
	PostingPlatforms string `json:"postingPlatforms,omitempty"`
	ClaimedBy        string `json:"claimedBy,omitempty"`
	ClaimRole        string `json:"claimRole,omitempty"`
	ClaimedAt        string `json:"claimedAt,omitempty"`
	ClaimExpiresAt   string `json:"claimExpiresAt,omitempty"`
	AssignmentState  string `json:"assignmentState"`
	ExplicitPriority string `json:"explicitPriority"`
}

// QueueEntry is one row of a per-role queue view. Guard and SLA results are
// precomputed so UI consumers render them directly.
type QueueEntry struct {
	Item            WorkItem `json:"item"`
	IsMine          bool     `json:"isMine"`
	IsAvailable     bool     `json:"isAvailable"`
	IsLockedByOther bool     `json:"isLockedByOther"`

	CanMoveNext    bool     `json:"canMoveNext"`
	BlockedReason  string   `json:"blockedReason,omitempty"`
	NextAction     string   `json:"nextAction,omitempty"`
	NextStage      string   `json:"nextStage,omitempty"`
	RequiredFields []string `json:"requiredFields,omitempty"`

	SLADeadlineAt     string  `json:"slaDeadlineAt,omitempty"`
	SLAStatus         string  `json:"slaStatus"`
	AgeMinutesInStage float64 `json:"ageMinutesInStage"`
	PriorityScore     float64 `json:"priorityScore"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// AuditEntry is one audit record in transport form.
type AuditEntry struct {
	ID            int64  `json:"id"`
	ItemID        int64  `json:"itemId"`
	EventType     string `json:"eventType"`
	Actor         string `json:"actor"`
	FromStage     string `json:"fromStage,omitempty"`
	ToStage       string `json:"toStage,omitempty"`
	CorrelationID string `json:"correlationId"`
	Details       string `json:"details,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// SweepResult reports one sweep invocation.
type SweepResult struct {
	SweptItemIDs []int64 `json:"sweptItemIds"`
}
