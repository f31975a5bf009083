package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipflow/internal/audit"
)

// Claim takes an exclusive time-bounded lock on an item for a worker in a
// role. The write is conditional on the current claim being empty, expired,
// or already held by the same worker (re-claiming refreshes the TTL). When
// two workers race, exactly one conditional write matches; the loser gets
// ErrAlreadyClaimed.
func (s *Store) Claim(ctx context.Context, id int64, worker string, role Role, ttl time.Duration, now time.Time) (*Item, error) {
	if worker == "" {
		return nil, errors.New("worker is required")
	}
	if ttl <= 0 {
		return nil, errors.New("claim ttl must be positive")
	}

	event := audit.New(id, audit.EventClaimed, worker, now)
	expiresAt := now.Add(ttl)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}

		rule, ok := RuleFor(item.Stage)
		if !ok || !rule.Claimable {
			return fmt.Errorf("stage %s: %w", item.Stage, ErrNotClaimable)
		}
		if role != rule.RequiredRole {
			return fmt.Errorf("stage %s needs %s, got %s: %w", item.Stage, rule.RequiredRole, role, ErrRoleMismatch)
		}

		event.FromStage = string(item.Stage)
		event.Details = fmt.Sprintf("role=%s ttl=%s", role, ttl)

		res, err := tx.ExecContext(
			ctx,
			`UPDATE work_items
             SET claimed_by = ?, claim_role = ?, claimed_at = ?, claim_expires_at = ?,
                 assignment_state = ?, updated_at = ?
             WHERE id = ? AND (claimed_by IS NULL OR claimed_by = ? OR claim_expires_at <= ?)`,
			worker,
			role,
			formatTime(now),
			formatTime(expiresAt),
			AssignmentAssigned,
			formatTime(now),
			id,
			worker,
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("claim item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("item %d held by %s: %w", id, item.ClaimedBy, ErrAlreadyClaimed)
		}
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, event)
	return s.GetByID(ctx, id)
}

// Release clears a claim. Only the holder or an admin may release; the
// conditional write guards against the claim changing hands mid-flight.
// Releasing an unclaimed item is a no-op.
func (s *Store) Release(ctx context.Context, id int64, actor Actor, now time.Time) error {
	event := audit.New(id, audit.EventReleased, actor.Worker, now)
	released := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.ClaimedBy == "" {
			return nil
		}
		if !actor.Admin && item.ClaimedBy != actor.Worker {
			return fmt.Errorf("item %d held by %s: %w", id, item.ClaimedBy, ErrNotClaimHolder)
		}

		event.FromStage = string(item.Stage)
		event.Details = fmt.Sprintf("holder=%s", item.ClaimedBy)

		res, err := tx.ExecContext(
			ctx,
			`UPDATE work_items
             SET claimed_by = NULL, claim_role = NULL, claimed_at = NULL, claim_expires_at = NULL,
                 assignment_state = ?, updated_at = ?
             WHERE id = ? AND claimed_by = ?`,
			AssignmentUnassigned,
			formatTime(now),
			id,
			item.ClaimedBy,
		)
		if err != nil {
			return fmt.Errorf("release claim: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("claim changed concurrently: %w", ErrNotClaimHolder)
		}
		released = true
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	if released {
		s.publishAudit(ctx, event)
	}
	return nil
}

// ExtendClaim moves an active claim's deadline to now+ttl regardless of who
// holds it. Admin only.
func (s *Store) ExtendClaim(ctx context.Context, id int64, ttl time.Duration, actor Actor, now time.Time) error {
	if !actor.Admin {
		return fmt.Errorf("extend claim: %w", ErrUnauthorized)
	}
	if ttl <= 0 {
		return errors.New("claim ttl must be positive")
	}

	event := audit.New(id, audit.EventExtended, actor.Worker, now)
	event.Details = fmt.Sprintf("ttl=%s", ttl)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.ClaimedBy == "" {
			return fmt.Errorf("item %d has no claim to extend: %w", id, ErrNotClaimHolder)
		}

		event.FromStage = string(item.Stage)

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE work_items SET claim_expires_at = ?, updated_at = ? WHERE id = ?`,
			formatTime(now.Add(ttl)),
			formatTime(now),
			id,
		); err != nil {
			return fmt.Errorf("extend claim: %w", err)
		}
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.publishAudit(ctx, event)
	return nil
}

// Reassign hands the claim to another worker, overwriting any active claim.
// Admin only. The target role must still match the stage's required role so
// the claim invariant holds.
func (s *Store) Reassign(ctx context.Context, id int64, toWorker string, toRole Role, ttl time.Duration, notes string, actor Actor, now time.Time) (*Item, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("reassign: %w", ErrUnauthorized)
	}
	if toWorker == "" {
		return nil, errors.New("target worker is required")
	}
	if ttl <= 0 {
		return nil, errors.New("claim ttl must be positive")
	}

	event := audit.New(id, audit.EventReassigned, actor.Worker, now)
	event.Details = fmt.Sprintf("to=%s role=%s notes=%s", toWorker, toRole, notes)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}

		rule, ok := RuleFor(item.Stage)
		if !ok || !rule.Claimable {
			return fmt.Errorf("stage %s: %w", item.Stage, ErrNotClaimable)
		}
		if toRole != rule.RequiredRole {
			return fmt.Errorf("stage %s needs %s, got %s: %w", item.Stage, rule.RequiredRole, toRole, ErrRoleMismatch)
		}

		event.FromStage = string(item.Stage)

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE work_items
             SET claimed_by = ?, claim_role = ?, claimed_at = ?, claim_expires_at = ?,
                 assignment_state = ?, updated_at = ?
             WHERE id = ?`,
			toWorker,
			toRole,
			formatTime(now),
			formatTime(now.Add(ttl)),
			AssignmentAssigned,
			formatTime(now),
			id,
		); err != nil {
			return fmt.Errorf("reassign claim: %w", err)
		}
		return insertAuditEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, event)
	return s.GetByID(ctx, id)
}

// SweepExpired clears every claim whose TTL lapsed at or before now and marks
// the assignment expired. Each cleared claim gets its own audit event with
// the system actor. The per-item conditional write makes the sweep safe to
// run concurrently with claim(): a claim refreshed after the scan no longer
// matches and is left alone. Calling twice with the same now sweeps nothing
// the second time.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) ([]SweptClaim, error) {
	var (
		swept  []SweptClaim
		events []audit.Event
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		swept = swept[:0]
		events = events[:0]

		rows, err := tx.QueryContext(
			ctx,
			`SELECT id, claimed_by, claim_role, stage FROM work_items
             WHERE claimed_by IS NOT NULL AND claim_expires_at <= ?
             ORDER BY id`,
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("scan expired claims: %w", err)
		}
		candidates := make([]SweptClaim, 0, 4)
		for rows.Next() {
			var c SweptClaim
			var roleStr, stageStr string
			if err := rows.Scan(&c.ItemID, &c.Worker, &roleStr, &stageStr); err != nil {
				rows.Close()
				return err
			}
			c.Role = Role(roleStr)
			c.Stage = Stage(stageStr)
			candidates = append(candidates, c)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, c := range candidates {
			res, err := tx.ExecContext(
				ctx,
				`UPDATE work_items
                 SET claimed_by = NULL, claim_role = NULL, claimed_at = NULL, claim_expires_at = NULL,
                     assignment_state = ?, updated_at = ?
                 WHERE id = ? AND claimed_by = ? AND claim_expires_at <= ?`,
				AssignmentExpired,
				formatTime(now),
				c.ItemID,
				c.Worker,
				formatTime(now),
			)
			if err != nil {
				return fmt.Errorf("sweep item %d: %w", c.ItemID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			if affected == 0 {
				continue
			}

			event := audit.New(c.ItemID, audit.EventClaimExpired, audit.SystemActor, now)
			event.FromStage = string(c.Stage)
			event.Details = fmt.Sprintf("worker=%s role=%s", c.Worker, c.Role)
			if err := insertAuditEvent(ctx, tx, event); err != nil {
				return err
			}

			swept = append(swept, c)
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, events...)
	return swept, nil
}

func getItemTx(ctx context.Context, tx *sql.Tx, id int64) (*Item, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM work_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}
