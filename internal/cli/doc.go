// Package cli wires the migration engine into cobra commands: upload,
// correct, purge and validate, plus the run configuration they share.
package cli
