package queue

import (
	"strings"
	"time"
)

// Stage represents the pipeline status a work item currently occupies.
type Stage string

const (
	StageGeneratingScript Stage = "generating_script"
	StageNeedsScript      Stage = "needs_script"
	StageNotRecorded      Stage = "not_recorded"
	StageRecorded         Stage = "recorded"
	StageReadyToPost      Stage = "ready_to_post"
	StagePosted           Stage = "posted"
)

var allStages = []Stage{
	StageGeneratingScript,
	StageNeedsScript,
	StageNotRecorded,
	StageRecorded,
	StageReadyToPost,
	StagePosted,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the stage has no outgoing transitions.
func (s Stage) IsTerminal() bool { return s == StagePosted }

// Role identifies which kind of worker a stage needs.
type Role string

const (
	RoleRecorder Role = "recorder"
	RoleEditor   Role = "editor"
	RoleUploader Role = "uploader"
)

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case RoleRecorder, RoleEditor, RoleUploader:
		return normalized, true
	}
	return "", false
}

// AssignmentState is the admin-facing projection of the claim lifecycle.
type AssignmentState string

const (
	AssignmentUnassigned AssignmentState = "unassigned"
	AssignmentAssigned   AssignmentState = "assigned"
	AssignmentExpired    AssignmentState = "expired"
	AssignmentCompleted  AssignmentState = "completed"
)

// PriorityLevel is the admin override folded into the priority score.
type PriorityLevel string

const (
	PriorityNormal PriorityLevel = "normal"
	PriorityHigh   PriorityLevel = "high"
	PriorityUrgent PriorityLevel = "urgent"
)

// ParsePriorityLevel converts a string into a known PriorityLevel.
func ParsePriorityLevel(value string) (PriorityLevel, bool) {
	normalized := PriorityLevel(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return normalized, true
	}
	return "", false
}

// Lane partitions work into stages a human pulls from the queue versus stages
// waiting on automation.
type Lane string

const (
	LaneWorker     Lane = "worker"
	LaneAutomation Lane = "automation"
)

// LaneForStage maps a stage to its lane for observability purposes.
func LaneForStage(stage Stage) Lane {
	switch stage {
	case StageNotRecorded, StageRecorded, StageReadyToPost:
		return LaneWorker
	default:
		return LaneAutomation
	}
}

// Actor identifies the caller of a claim or transition operation.
type Actor struct {
	Worker string
	Role   Role
	Admin  bool
}

// Item represents a work item persisted in SQLite. Claim fields are either
// all empty or all populated; only Store claim operations may change them.
type Item struct {
	ID             int64
	Title          string
	Stage          Stage
	StageEnteredAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Content fields checked by transition guards.
	ScriptLocked        bool
	FinalDeliverableURL string
	PostingCaption      string
	PostingPlatforms    string

	// Claim fields.
	ClaimedBy      string
	ClaimRole      Role
	ClaimedAt      *time.Time
	ClaimExpiresAt *time.Time

	// Assignment overlay.
	AssignmentState  AssignmentState
	ExplicitPriority PriorityLevel
}

// Lane returns the item's processing lane.
func (i *Item) Lane() Lane { return LaneForStage(i.Stage) }

// claimLapsed is the single expiry predicate shared by lazy readers, the
// claim conditional write, and the sweep. Expiry is inclusive: a claim whose
// deadline equals now is already expired.
func claimLapsed(expiresAt *time.Time, now time.Time) bool {
	return expiresAt == nil || !now.Before(*expiresAt)
}

// ClaimActive reports whether the item carries a non-expired claim at now.
func (i *Item) ClaimActive(now time.Time) bool {
	return i.ClaimedBy != "" && !claimLapsed(i.ClaimExpiresAt, now)
}

// ClaimExpired reports whether the item carries a claim whose TTL has lapsed.
func (i *Item) ClaimExpired(now time.Time) bool {
	return i.ClaimedBy != "" && claimLapsed(i.ClaimExpiresAt, now)
}

// ClaimedActivelyBy reports whether worker holds a non-expired claim on the item.
func (i *Item) ClaimedActivelyBy(worker string, now time.Time) bool {
	return i.ClaimActive(now) && i.ClaimedBy == worker
}

// Available reports whether a worker could claim the item right now, looking
// only at the claim fields (stage claimability is checked separately).
func (i *Item) Available(now time.Time) bool {
	return !i.ClaimActive(now)
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total     int
	Claimable int
	Claimed   int
	Waiting   int
	Posted    int
}

// SweptClaim describes one claim cleared by SweepExpired.
type SweptClaim struct {
	ItemID int64
	Worker string
	Role   Role
	Stage  Stage
}
