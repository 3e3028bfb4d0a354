// Package identity synthesizes deterministic, UUID-shaped identifiers
// from arbitrary legacy key strings.
//
// The legacy export has no stable, globally unique foreign keys: identifiers
// may be empty, numeric, or free text. Synthesis maps any candidate string
// to a fixed 36-character 8-4-4-4-12 identifier such that the same input
// always yields the same output, within and across process runs. Values
// that are already canonical UUIDs pass through unchanged. This is what
// makes the migration re-runnable without creating duplicates.
package identity
