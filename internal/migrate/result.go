package migrate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/emberwell/migrate/internal/entity"
)

// Phase names the pipeline stage where a record failed or was skipped.
type Phase string

const (
	PhaseFetch   Phase = "fetch"
	PhaseParse   Phase = "parse"
	PhaseMap     Phase = "map"
	PhaseResolve Phase = "resolve"
	PhaseWrite   Phase = "write"
)

// RecordIssue is one record that did not make it to the store, with
// enough context to diagnose it against the legacy export.
type RecordIssue struct {
	RecordID string `json:"record_id"`
	Phase    Phase  `json:"phase"`
	Message  string `json:"message"`
}

// Summary counts one entity type's run. Partial progress is the expected
// steady state of a multi-run migration: failures are enumerated, not
// escalated.
type Summary struct {
	EntityType entity.Type   `json:"entity_type"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Skips      []RecordIssue `json:"skips,omitempty"`
	Failures   []RecordIssue `json:"failures,omitempty"`
}

// Report is the outcome of one CLI invocation.
type Report struct {
	RunToken  string    `json:"run_token"`
	DryRun    bool      `json:"dry_run,omitempty"`
	Summaries []Summary `json:"summaries"`
}

// String renders the human-readable report.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s", r.RunToken)
	if r.DryRun {
		b.WriteString(" (dry-run)")
	}
	b.WriteByte('\n')
	for _, s := range r.Summaries {
		fmt.Fprintf(&b, "  %-15s attempted=%d succeeded=%d skipped=%d failed=%d\n",
			s.EntityType, s.Attempted, s.Succeeded, s.Skipped, s.Failed)
		for _, iss := range s.Skips {
			fmt.Fprintf(&b, "    skipped %s [%s]: %s\n", iss.RecordID, iss.Phase, iss.Message)
		}
		for _, iss := range s.Failures {
			fmt.Fprintf(&b, "    failed %s [%s]: %s\n", iss.RecordID, iss.Phase, iss.Message)
		}
	}
	return b.String()
}

// tally accumulates one entity type's summary. Write workers share it
// concurrently, so every mutation takes the mutex - the result log must
// never lose an update.
type tally struct {
	mu      sync.Mutex
	summary Summary
}

func newTally(typ entity.Type) *tally {
	return &tally{summary: Summary{EntityType: typ}}
}

func (t *tally) attempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Attempted++
}

func (t *tally) succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Succeeded++
}

func (t *tally) skip(id string, phase Phase, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Skipped++
	t.summary.Skips = append(t.summary.Skips, RecordIssue{RecordID: id, Phase: phase, Message: message})
}

func (t *tally) fail(id string, phase Phase, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Failed++
	t.summary.Failures = append(t.summary.Failures, RecordIssue{RecordID: id, Phase: phase, Message: message})
}

func (t *tally) done() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}
