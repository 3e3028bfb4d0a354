package resolve

import (
	"fmt"

	"github.com/emberwell/migrate/internal/entity"
)

// Key is the composite tuple identifying the one pillar a user activity
// belongs to. The category and program identifiers are the synthesized
// forms, so mapped activities and mapped pillars compare equal.
type Key struct {
	CategoryID string
	Period     int
	ProgramID  string
}

// NotFoundError records an activity whose tuple matched no pillar. The
// natural keys are carried so the miss can be diagnosed against the
// legacy export later.
type NotFoundError struct {
	ActivityID string
	Key        Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pillar matches activity %s (category=%s period=%d program=%s)",
		e.ActivityID, e.Key.CategoryID, e.Key.Period, e.Key.ProgramID)
}

// PillarIndex is a batch-scoped lookup from composite key to pillar
// identifier.
type PillarIndex struct {
	byKey map[Key]string
}

// NewPillarIndex builds the index from mapped pillars. At most one pillar
// should match a given tuple; if the source ever contains duplicates, the
// first occurrence in original source order wins and later duplicates are
// ignored.
func NewPillarIndex(pillars []entity.Pillar) *PillarIndex {
	byKey := make(map[Key]string, len(pillars))
	for _, p := range pillars {
		k := Key{CategoryID: p.CategoryID, Period: p.Period, ProgramID: p.ProgramID}
		if _, exists := byKey[k]; exists {
			continue
		}
		byKey[k] = p.ID
	}
	return &PillarIndex{byKey: byKey}
}

// Len returns the number of distinct tuples in the index.
func (ix *PillarIndex) Len() int {
	return len(ix.byKey)
}

// Resolve returns the pillar identifier for an activity's tuple, or false
// when no pillar matches.
func (ix *PillarIndex) Resolve(k Key) (string, bool) {
	id, ok := ix.byKey[k]
	return id, ok
}

// ResolveActivity fills in the activity's pillar reference, or returns a
// *NotFoundError carrying the activity's natural keys. The activity is
// not modified on a miss.
func (ix *PillarIndex) ResolveActivity(a *entity.UserActivity) error {
	k := Key{CategoryID: a.CategoryID, Period: a.Period, ProgramID: a.ProgramID}
	id, ok := ix.byKey[k]
	if !ok {
		return &NotFoundError{ActivityID: a.ID, Key: k}
	}
	a.PillarID = id
	return nil
}
