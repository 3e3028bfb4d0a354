package identity

import "github.com/google/uuid"

// NewRunToken generates a time-sortable UUIDv7 token correlating all log
// entries and summaries of one migration run.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort
// by creation time, which is helpful when diffing successive runs.
//
// Panics if UUID generation fails (should never happen in practice).
func NewRunToken() string {
	return uuid.Must(uuid.NewV7()).String()
}
