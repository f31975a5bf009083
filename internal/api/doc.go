// Package api composes the queue store, transition guard, and SLA engine
// into the read model and action surface the CLI (and any HTTP layer)
// consumes.
//
// # Key Types
//
// WorkItem: transport representation of a work item with claim and
// assignment state.
//
// QueueEntry: one row of a worker's queue view, carrying precomputed
// can-move-next, blocked-reason, next-action, SLA, and priority fields so
// consumers render them without re-deriving guard logic.
//
// QueueService: read-only queries (ForRole, Describe, Stats).
//
// Actions: the mutation surface (claim, release, extend, reassign, advance,
// sweep, priority). Authorization lives here: admin status comes from
// configuration, and admin-only operations reject other callers before any
// store write.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Availability is recomputed from the claim
// fields with the shared expiry predicate at view time, never read from a
// cached flag, so a queue view cannot show a stale lock.
package api
