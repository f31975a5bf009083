// Package workflow runs the background reconciliation over the queue.
//
// The Sweeper periodically clears lapsed claims so abandoned items return to
// their role queues, and raises overdue alerts for items past their stage
// deadline. Both passes are idempotent: sweeping twice at the same instant
// changes nothing the second time, and overdue alerts are deduplicated per
// item within a configurable window.
//
// Lazy expiry in the read and claim paths means the queue stays correct even
// if the sweeper never runs; the sweeper exists so assignment_state and the
// audit trail catch up without waiting for the next reader.
package workflow
