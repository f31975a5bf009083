package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipflow/internal/audit"
)

// NewItem inserts a work item at the start of the pipeline. Ingestion is
// external in production; this is the same entry point it uses.
func (s *Store) NewItem(ctx context.Context, title string, actor string, now time.Time) (*Item, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	timestamp := formatTime(now)

	var id int64
	event := audit.New(0, audit.EventCreated, actor, now)
	event.ToStage = string(StageGeneratingScript)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO work_items (
                title, stage, stage_entered_at, created_at, updated_at,
                assignment_state, explicit_priority
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			title,
			StageGeneratingScript,
			timestamp,
			timestamp,
			timestamp,
			AssignmentUnassigned,
			PriorityNormal,
		)
		if err != nil {
			return fmt.Errorf("insert work item: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		event.ItemID = id
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, event)
	return s.GetByID(ctx, id)
}

// GetByID fetches a work item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM work_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns work items filtered by stage set (or all items when no stage
// is provided), ordered by creation time.
func (s *Store) List(ctx context.Context, stages ...Stage) ([]*Item, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM work_items`
	orderClause := ` ORDER BY created_at, id`

	if len(stages) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(stages))
		args := make([]any, len(stages))
		for i, stage := range stages {
			args[i] = stage
		}
		query := baseQuery + ` WHERE stage IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateContent persists changes to the guarded content fields. Claim fields
// are deliberately excluded; only claim operations may touch them.
func (s *Store) UpdateContent(ctx context.Context, item *Item, now time.Time) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = now.UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE work_items
         SET title = ?, script_locked = ?, final_deliverable_url = ?,
             posting_caption = ?, posting_platforms = ?, updated_at = ?
         WHERE id = ?`,
		item.Title,
		boolToInt(item.ScriptLocked),
		nullableString(item.FinalDeliverableURL),
		nullableString(item.PostingCaption),
		nullableString(item.PostingPlatforms),
		formatTime(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetExplicitPriority records an admin priority override and audits it.
func (s *Store) SetExplicitPriority(ctx context.Context, id int64, level PriorityLevel, actor Actor, now time.Time) error {
	if !actor.Admin {
		return fmt.Errorf("set priority: %w", ErrUnauthorized)
	}

	event := audit.New(id, audit.EventPriorityChanged, actor.Worker, now)
	event.Details = string(level)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`UPDATE work_items SET explicit_priority = ?, updated_at = ? WHERE id = ?`,
			level,
			formatTime(now),
			id,
		)
		if err != nil {
			return fmt.Errorf("set priority: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.publishAudit(ctx, event)
	return nil
}

// AdvanceStage moves an item from its current stage to target with
// compare-and-set semantics: the write only lands if the item is still in
// fromStage. Guard evaluation happens before this call; the conditional write
// closes the race between two concurrent advances. A successful advance
// clears the claim and marks the assignment completed when the advancing
// actor held it.
func (s *Store) AdvanceStage(ctx context.Context, id int64, fromStage, target Stage, actor Actor, now time.Time) (*Item, error) {
	event := audit.New(id, audit.EventTransitioned, actor.Worker, now)
	event.FromStage = string(fromStage)
	event.ToStage = string(target)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT claimed_by FROM work_items WHERE id = ?`, id)
		var claimedBy sql.NullString
		if err := row.Scan(&claimedBy); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("read claim holder: %w", err)
		}

		assignment := AssignmentUnassigned
		if claimedBy.String != "" && claimedBy.String == actor.Worker {
			assignment = AssignmentCompleted
		}

		res, err := tx.ExecContext(
			ctx,
			`UPDATE work_items
             SET stage = ?, stage_entered_at = ?, updated_at = ?,
                 claimed_by = NULL, claim_role = NULL, claimed_at = NULL, claim_expires_at = NULL,
                 assignment_state = ?
             WHERE id = ? AND stage = ?`,
			target,
			formatTime(now),
			formatTime(now),
			assignment,
			id,
			fromStage,
		)
		if err != nil {
			return fmt.Errorf("advance stage: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Another caller moved the item first.
			return fmt.Errorf("stage changed concurrently: %w", ErrInvalidTransition)
		}
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, event)
	return s.GetByID(ctx, id)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
