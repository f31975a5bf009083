package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, title, stage, stage_entered_at, created_at, updated_at, script_locked, final_deliverable_url, posting_caption, posting_platforms, claimed_by, claim_role, claimed_at, claim_expires_at, assignment_state, explicit_priority"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		title           string
		stageStr        string
		stageEnteredRaw sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		scriptLocked    sql.NullInt64
		deliverableURL  sql.NullString
		postingCaption  sql.NullString
		postingPlatform sql.NullString
		claimedBy       sql.NullString
		claimRole       sql.NullString
		claimedAtRaw    sql.NullString
		claimExpiresRaw sql.NullString
		assignmentState sql.NullString
		explicitPrio    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&stageStr,
		&stageEnteredRaw,
		&createdRaw,
		&updatedRaw,
		&scriptLocked,
		&deliverableURL,
		&postingCaption,
		&postingPlatform,
		&claimedBy,
		&claimRole,
		&claimedAtRaw,
		&claimExpiresRaw,
		&assignmentState,
		&explicitPrio,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:                  id,
		Title:               title,
		Stage:               Stage(stageStr),
		ScriptLocked:        scriptLocked.Valid && scriptLocked.Int64 != 0,
		FinalDeliverableURL: deliverableURL.String,
		PostingCaption:      postingCaption.String,
		PostingPlatforms:    postingPlatform.String,
		ClaimedBy:           claimedBy.String,
		ClaimRole:           Role(claimRole.String),
		AssignmentState:     AssignmentState(assignmentState.String),
		ExplicitPriority:    PriorityLevel(explicitPrio.String),
	}
	if item.AssignmentState == "" {
		item.AssignmentState = AssignmentUnassigned
	}
	if item.ExplicitPriority == "" {
		item.ExplicitPriority = PriorityNormal
	}

	if entered, err := parseTimeString(stageEnteredRaw.String); err == nil {
		item.StageEnteredAt = entered
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if claimedAtRaw.Valid {
		if claimedAt, err := parseTimeString(claimedAtRaw.String); err == nil {
			item.ClaimedAt = &claimedAt
		}
	}
	if claimExpiresRaw.Valid {
		if expiresAt, err := parseTimeString(claimExpiresRaw.String); err == nil {
			item.ClaimExpiresAt = &expiresAt
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed-width so stored timestamps compare correctly as
// strings inside SQL claim-expiry predicates.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
