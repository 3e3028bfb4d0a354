// Package mapper holds the pure per-entity-type transforms from legacy
// row shape to normalized target entity shape.
//
// Every transform translates coded values through fixed lookup tables,
// runs identity synthesis on every key field and date normalization on
// every date field, and performs no I/O and no logging. Validation
// failures propagate as errors and are captured per record by the
// orchestrator; an unknown enum code is not a failure - the field is left
// at its zero value rather than guessed.
package mapper
