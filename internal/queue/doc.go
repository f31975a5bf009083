// Package queue persists work items in SQLite and owns every claim mutation.
//
// The Store manages database connections, schema migrations, stats queries,
// and the claim lifecycle (claim, release, extend, reassign, sweep). All
// claim writes are single conditional UPDATEs so two concurrent claimers on
// the same item resolve deterministically: exactly one row matches, the other
// caller observes ErrAlreadyClaimed. Expiry is evaluated against a caller
// supplied "now" through one shared predicate so lazy readers and the eager
// sweep can never disagree.
//
// Treat this package as the single source of truth for stage and claim
// semantics; when you add stages or guarded fields, update rules.go and the
// schema together.
package queue
