// Package target abstracts the store the migration writes into.
//
// The store exposes filtered, cursor-paginated list plus create, update
// and delete per entity type. Two implementations exist and are chosen
// once at process start: RemoteClient speaks the store's HTTP API, and
// SQLiteClient is a local store used for staging runs and tests. Both
// report per-record write failures as *WriteError values so batch callers
// can keep processing the remaining records.
package target
