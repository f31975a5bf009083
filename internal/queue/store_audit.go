package queue

import (
	"context"
	"database/sql"
	"fmt"

	"clipflow/internal/audit"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAuditEvent(ctx context.Context, db execer, event audit.Event) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO audit_events (
            item_id, event_type, actor, from_stage, to_stage,
            correlation_id, details, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ItemID,
		event.EventType,
		event.Actor,
		nullableString(event.FromStage),
		nullableString(event.ToStage),
		event.CorrelationID,
		nullableString(event.Details),
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// AuditEvents returns the most recent audit events for an item, newest first.
// A limit of zero or less returns everything.
func (s *Store) AuditEvents(ctx context.Context, itemID int64, limit int) ([]audit.Event, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, item_id, event_type, actor, from_stage, to_stage, correlation_id, details, created_at
              FROM audit_events WHERE item_id = ? ORDER BY id DESC`
	args := []any{itemID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event      audit.Event
			fromStage  sql.NullString
			toStage    sql.NullString
			details    sql.NullString
			createdRaw string
		)
		if err := rows.Scan(
			&event.ID,
			&event.ItemID,
			&event.EventType,
			&event.Actor,
			&fromStage,
			&toStage,
			&event.CorrelationID,
			&details,
			&createdRaw,
		); err != nil {
			return nil, err
		}
		event.FromStage = fromStage.String
		event.ToStage = toStage.String
		event.Details = details.String
		if created, err := parseTimeString(createdRaw); err == nil {
			event.CreatedAt = created
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
