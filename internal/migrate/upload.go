package migrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/identity"
	"github.com/emberwell/migrate/internal/ingest"
	"github.com/emberwell/migrate/internal/mapper"
	"github.com/emberwell/migrate/internal/resolve"
)

// rowMapper converts one legacy row into a target record. A returned
// error fails the single record, not the batch.
type rowMapper func(ingest.Row) (entity.Record, error)

// uploadType runs the full pipeline for one entity type. The returned
// error is fatal (fetch, parse, or store listing); per-record problems
// land in the summary instead.
func (o *Orchestrator) uploadType(ctx context.Context, typ entity.Type, mapRow rowMapper) (Summary, error) {
	t := newTally(typ)

	rows, err := o.fetchRows(ctx, typ)
	if err != nil {
		return t.done(), err
	}
	existing, err := o.existingIDs(ctx, typ)
	if err != nil {
		return t.done(), err
	}

	records := make([]entity.Record, 0, len(rows))
	for _, row := range rows {
		t.attempt()
		rec, err := mapRow(row)
		if err != nil {
			t.fail(rowID(typ, row), PhaseMap, err.Error())
			continue
		}
		records = append(records, rec)
	}

	o.writeRecords(ctx, typ, records, existing, t)

	s := t.done()
	o.log.Info("upload finished",
		"entity_type", typ,
		"attempted", s.Attempted,
		"succeeded", s.Succeeded,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return s, nil
}

// keyColumns maps each entity type to its own primary key column in the
// legacy export.
var keyColumns = map[entity.Type]string{
	entity.TypeOrganization: "organization_id",
	entity.TypeLocation:     "location_id",
	entity.TypeGroup:        "group_id",
	entity.TypePillar:       "pillar_id",
	entity.TypeUser:         "user_id",
	entity.TypeUserActivity: "activity_id",
	entity.TypeFeedback:     "feedback_id",
}

// rowID extracts the row's own identifier for diagnostics. Rows carry
// parent reference columns too, so the lookup must go through the entity
// type's own key column: a failing user row is named by its user_id, not
// by the organization it belongs to.
func rowID(typ entity.Type, row ingest.Row) string {
	if v := row[keyColumns[typ]]; v != "" {
		return v
	}
	return "?"
}

// UploadOrganizations migrates the organizations document.
func (o *Orchestrator) UploadOrganizations(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypeOrganization, func(row ingest.Row) (entity.Record, error) {
		org, err := mapper.MapOrganization(row)
		if err != nil {
			return nil, err
		}
		o.warnUnknownCode(row, "status", string(org.Status))
		return org, nil
	})
}

// UploadLocations migrates the locations document.
func (o *Orchestrator) UploadLocations(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypeLocation, func(row ingest.Row) (entity.Record, error) {
		loc, err := mapper.MapLocation(row)
		if err != nil {
			return nil, err
		}
		o.warnUnknownCode(row, "status", string(loc.Status))
		return loc, nil
	})
}

// UploadGroups migrates the groups document.
func (o *Orchestrator) UploadGroups(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypeGroup, func(row ingest.Row) (entity.Record, error) {
		g, err := mapper.MapGroup(row)
		if err != nil {
			return nil, err
		}
		o.warnUnknownCode(row, "status", string(g.Status))
		return g, nil
	})
}

// UploadPillars migrates the pillars document.
func (o *Orchestrator) UploadPillars(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypePillar, func(row ingest.Row) (entity.Record, error) {
		p, err := mapper.MapPillar(row)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// UploadUsers migrates the users document.
func (o *Orchestrator) UploadUsers(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypeUser, func(row ingest.Row) (entity.Record, error) {
		u, err := mapper.MapUser(row)
		if err != nil {
			return nil, err
		}
		o.warnUnknownCode(row, "status", string(u.Status))
		o.warnUnknownCode(row, "user_type", string(u.Type))
		return u, nil
	})
}

// UploadUserActivities migrates the user activities document. Activities
// resolve their pillar reference through the composite-key index built
// from the pillars document of the same run; an unresolvable activity is
// skipped, never written with a fabricated reference.
func (o *Orchestrator) UploadUserActivities(ctx context.Context) (Summary, error) {
	ix, err := o.pillarIndex(ctx)
	if err != nil {
		return Summary{EntityType: entity.TypeUserActivity}, err
	}

	typ := entity.TypeUserActivity
	t := newTally(typ)

	rows, err := o.fetchRows(ctx, typ)
	if err != nil {
		return t.done(), err
	}
	existing, err := o.existingIDs(ctx, typ)
	if err != nil {
		return t.done(), err
	}

	records := make([]entity.Record, 0, len(rows))
	for _, row := range rows {
		t.attempt()
		a, err := mapper.MapUserActivity(row)
		if err != nil {
			t.fail(rowID(typ, row), PhaseMap, err.Error())
			continue
		}
		o.warnUnknownCode(row, "status", string(a.Status))
		if err := ix.ResolveActivity(&a); err != nil {
			t.skip(a.ID, PhaseResolve, err.Error())
			o.log.Warn("activity skipped, no matching pillar",
				"activity_id", row["activity_id"],
				"category_id", row["category_id"],
				"period", row["period"],
				"program_id", row["program_id"],
			)
			continue
		}
		records = append(records, a)
	}

	o.writeRecords(ctx, typ, records, existing, t)

	s := t.done()
	o.log.Info("upload finished",
		"entity_type", typ,
		"attempted", s.Attempted,
		"succeeded", s.Succeeded,
		"skipped", s.Skipped,
		"failed", s.Failed,
	)
	return s, nil
}

// UploadFeedback migrates the feedback document.
func (o *Orchestrator) UploadFeedback(ctx context.Context) (Summary, error) {
	return o.uploadType(ctx, entity.TypeFeedback, func(row ingest.Row) (entity.Record, error) {
		f, err := mapper.MapFeedback(row)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// pillarIndex builds the composite-key index from the pillars document.
// Rows that fail mapping are left out of the index; they surface as
// failures when the pillars themselves are uploaded.
func (o *Orchestrator) pillarIndex(ctx context.Context) (*resolve.PillarIndex, error) {
	rows, err := o.fetchRows(ctx, entity.TypePillar)
	if err != nil {
		return nil, err
	}
	pillars := make([]entity.Pillar, 0, len(rows))
	for _, row := range rows {
		p, err := mapper.MapPillar(row)
		if err != nil {
			o.log.Debug("pillar row excluded from index", "pillar_id", row["pillar_id"], "error", err)
			continue
		}
		pillars = append(pillars, p)
	}
	ix := resolve.NewPillarIndex(pillars)
	o.log.Debug("pillar index built", "tuples", ix.Len())
	return ix, nil
}

// Upload runs the upload operation for one entity type.
func (o *Orchestrator) Upload(ctx context.Context, typ entity.Type) (Summary, error) {
	switch typ {
	case entity.TypeOrganization:
		return o.UploadOrganizations(ctx)
	case entity.TypeLocation:
		return o.UploadLocations(ctx)
	case entity.TypeGroup:
		return o.UploadGroups(ctx)
	case entity.TypePillar:
		return o.UploadPillars(ctx)
	case entity.TypeUser:
		return o.UploadUsers(ctx)
	case entity.TypeUserActivity:
		return o.UploadUserActivities(ctx)
	case entity.TypeFeedback:
		return o.UploadFeedback(ctx)
	default:
		return Summary{}, fmt.Errorf("unknown entity type %q", typ)
	}
}

// UploadAll migrates every entity type in dependency order. Types with no
// dependency between them run concurrently; a dependent type never starts
// before the types it references have finished. The first fatal error is
// returned along with the summaries gathered so far.
func (o *Orchestrator) UploadAll(ctx context.Context) (Report, error) {
	report := Report{RunToken: identity.NewRunToken(), DryRun: o.dryRun}
	o.log.Info("migration run starting", "run_token", report.RunToken, "dry_run", o.dryRun)

	byType := make(map[entity.Type]Summary)
	var firstErr error

	stage := func(types ...entity.Type) {
		if firstErr != nil {
			return
		}
		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, typ := range types {
			wg.Add(1)
			go func(typ entity.Type) {
				defer wg.Done()
				s, err := o.Upload(ctx, typ)
				mu.Lock()
				defer mu.Unlock()
				byType[typ] = s
				if err != nil && firstErr == nil {
					firstErr = err
				}
			}(typ)
		}
		wg.Wait()
	}

	stage(entity.TypeOrganization, entity.TypeLocation)
	stage(entity.TypeGroup)
	stage(entity.TypePillar, entity.TypeUser)
	stage(entity.TypeUserActivity)
	stage(entity.TypeFeedback)

	for _, typ := range entity.Types {
		if s, ok := byType[typ]; ok {
			report.Summaries = append(report.Summaries, s)
		}
	}
	return report, firstErr
}
