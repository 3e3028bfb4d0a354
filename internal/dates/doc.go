// Package dates normalizes heterogeneous legacy date representations to
// canonical YYYY-MM-DD strings.
//
// The legacy export mixes ISO dates, timestamps, epoch milliseconds and
// locale formats in the same columns. Normalization is total over the
// accepted inputs and fails with a FormatError otherwise; the failure is
// scoped to the single record being mapped, never to the whole batch.
package dates
