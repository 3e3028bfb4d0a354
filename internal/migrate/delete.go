package migrate

import (
	"context"
	"sync"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/target"
)

// DeleteAll removes every stored record of one entity type. This is a
// staging and test cleanup operation; it has no place in the idempotent
// production path.
func (o *Orchestrator) DeleteAll(ctx context.Context, typ entity.Type) (Summary, error) {
	t := newTally(typ)

	objs, err := target.ListAll(ctx, o.store, typ, nil, o.maxPages)
	if err != nil {
		return t.done(), err
	}

	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for _, obj := range objs {
		t.attempt()
		if err := ctx.Err(); err != nil {
			t.skip(obj.ID(), PhaseWrite, "aborted: "+err.Error())
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if o.dryRun {
				o.log.Info("dry-run: would delete", "entity_type", typ, "id", id)
				t.succeed()
				return
			}
			if err := o.store.Delete(ctx, typ, id); err != nil {
				t.fail(id, PhaseWrite, err.Error())
				return
			}
			t.succeed()
		}(obj.ID())
	}
	wg.Wait()

	s := t.done()
	o.log.Info("deletion finished",
		"entity_type", typ,
		"attempted", s.Attempted,
		"deleted", s.Succeeded,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return s, nil
}
