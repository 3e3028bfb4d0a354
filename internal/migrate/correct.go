package migrate

import (
	"context"
	"sync"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/mapper"
	"github.com/emberwell/migrate/internal/target"
)

// patchJob is one store record with its recomputed field value.
type patchJob struct {
	id    string
	patch target.Object
}

// CorrectUserStatuses recomputes every user's status from the legacy
// source and updates only the records whose stored status differs. No
// other field is touched. Users missing from the legacy source, or whose
// legacy code has no mapping, are left alone.
func (o *Orchestrator) CorrectUserStatuses(ctx context.Context) (Summary, error) {
	rows, err := o.fetchRows(ctx, entity.TypeUser)
	if err != nil {
		return Summary{EntityType: entity.TypeUser}, err
	}

	derived := make(map[string]entity.Status, len(rows))
	for _, row := range rows {
		u, err := mapper.MapUser(row)
		if err != nil {
			// The record never made it into the store; uploads own
			// reporting mapping failures.
			continue
		}
		derived[u.ID] = u.Status
	}

	return o.correctField(ctx, entity.TypeUser, "status", func(obj target.Object) (string, bool) {
		want, ok := derived[obj.ID()]
		if !ok || want == "" {
			return "", false
		}
		return string(want), true
	})
}

// CorrectActivityPillars recomputes every activity's pillar reference by
// rebuilding the composite-key index from the legacy pillars document and
// re-resolving each legacy activity row. Only activities whose stored
// reference differs are updated.
func (o *Orchestrator) CorrectActivityPillars(ctx context.Context) (Summary, error) {
	ix, err := o.pillarIndex(ctx)
	if err != nil {
		return Summary{EntityType: entity.TypeUserActivity}, err
	}
	rows, err := o.fetchRows(ctx, entity.TypeUserActivity)
	if err != nil {
		return Summary{EntityType: entity.TypeUserActivity}, err
	}

	derived := make(map[string]string, len(rows))
	for _, row := range rows {
		a, err := mapper.MapUserActivity(row)
		if err != nil {
			continue
		}
		if err := ix.ResolveActivity(&a); err != nil {
			// Unresolvable activities keep their stored reference; a
			// correction never nulls a field it cannot recompute.
			continue
		}
		derived[a.ID] = a.PillarID
	}

	return o.correctField(ctx, entity.TypeUserActivity, "pillar_id", func(obj target.Object) (string, bool) {
		want, ok := derived[obj.ID()]
		return want, ok
	})
}

// correctField lists every stored record of a type, recomputes one field
// through derive, and updates only the records whose stored value
// differs. Updates run on the bounded worker pool; each failure is
// isolated to its record.
func (o *Orchestrator) correctField(ctx context.Context, typ entity.Type, field string, derive func(target.Object) (string, bool)) (Summary, error) {
	t := newTally(typ)

	objs, err := target.ListAll(ctx, o.store, typ, nil, o.maxPages)
	if err != nil {
		return t.done(), err
	}

	var jobs []patchJob
	for _, obj := range objs {
		t.attempt()
		want, ok := derive(obj)
		if !ok {
			t.skip(obj.ID(), PhaseResolve, "no derived value, record left alone")
			continue
		}
		if obj.Field(field) == want {
			t.skip(obj.ID(), PhaseWrite, "already correct")
			continue
		}
		jobs = append(jobs, patchJob{id: obj.ID(), patch: target.Object{field: want}})
	}

	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			t.skip(job.id, PhaseWrite, "aborted: "+err.Error())
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(job patchJob) {
			defer wg.Done()
			defer func() { <-sem }()
			if o.dryRun {
				o.log.Info("dry-run: would update", "entity_type", typ, "id", job.id, "field", field)
				t.succeed()
				return
			}
			if err := o.store.Update(ctx, typ, job.id, job.patch); err != nil {
				t.fail(job.id, PhaseWrite, err.Error())
				return
			}
			t.succeed()
		}(job)
	}
	wg.Wait()

	s := t.done()
	o.log.Info("correction finished",
		"entity_type", typ,
		"field", field,
		"attempted", s.Attempted,
		"updated", s.Succeeded,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return s, nil
}
