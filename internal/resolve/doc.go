// Package resolve finds cross-entity references the legacy export does
// not store directly.
//
// A legacy user activity carries no pillar foreign key; the pillar it
// belongs to is identified by the composite tuple (category, period,
// program). An index over the pillar set is built once per batch and each
// activity looks itself up by its own tuple. A miss skips the activity -
// a pillar reference is never fabricated.
package resolve
