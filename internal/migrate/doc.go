// Package migrate sequences the migration: Fetch -> Parse -> Map ->
// Resolve -> Write per entity type, in dependency order across types.
//
// Failures are isolated at the smallest possible scope. One record's
// mapping or write failure is recorded and the batch continues; only a
// source fetch failure is fatal for an entity type, since no partial
// source can be trusted. Every run ends with a per-entity summary of
// attempted, succeeded, skipped and failed records.
//
// Uploads are idempotent: identifiers are deterministic and writes go
// through check-then-create, so re-running after a partial prior run
// never creates duplicates. Dry-run mode executes the full pipeline and
// reports would-be writes without touching the store.
package migrate
