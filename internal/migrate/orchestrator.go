package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/ingest"
	"github.com/emberwell/migrate/internal/target"
)

// DefaultWorkers bounds concurrent record writes within one entity type.
const DefaultWorkers = 4

// DefaultDocuments maps entity types to their legacy export document
// names. Overridable per run via Options.Documents.
var DefaultDocuments = map[entity.Type]string{
	entity.TypeOrganization: "organizations.csv",
	entity.TypeLocation:     "locations.csv",
	entity.TypeGroup:        "groups.csv",
	entity.TypePillar:       "pillars.csv",
	entity.TypeUser:         "users.csv",
	entity.TypeUserActivity: "user_activities.csv",
	entity.TypeFeedback:     "feedback.csv",
}

// Options configures an Orchestrator.
type Options struct {
	Source ingest.Source
	Store  target.Client

	// Documents overrides DefaultDocuments entries.
	Documents map[entity.Type]string

	// Workers bounds concurrent writes within one entity type.
	// Zero means DefaultWorkers.
	Workers int

	// MaxPages guards pagination loops. Zero means target.DefaultMaxPages.
	MaxPages int

	// DryRun executes Fetch->Parse->Map->Resolve and reports would-be
	// writes without calling create, update or delete.
	DryRun bool

	Logger *slog.Logger
}

// Orchestrator drives the migration against one source and one store,
// both injected at construction.
type Orchestrator struct {
	src      ingest.Source
	store    target.Client
	docs     map[entity.Type]string
	workers  int
	maxPages int
	dryRun   bool
	log      *slog.Logger
}

// New creates an orchestrator. Source and Store are required.
func New(opts Options) (*Orchestrator, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("orchestrator requires a source")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator requires a store client")
	}

	docs := make(map[entity.Type]string, len(DefaultDocuments))
	for typ, name := range DefaultDocuments {
		docs[typ] = name
	}
	for typ, name := range opts.Documents {
		docs[typ] = name
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		src:      opts.Source,
		store:    opts.Store,
		docs:     docs,
		workers:  workers,
		maxPages: opts.MaxPages,
		dryRun:   opts.DryRun,
		log:      log,
	}, nil
}

// fetchRows retrieves and parses the legacy document for an entity type.
// Any failure here is fatal for the type's whole run.
func (o *Orchestrator) fetchRows(ctx context.Context, typ entity.Type) ([]ingest.Row, error) {
	name := o.docs[typ]
	o.log.Debug("fetching source", "entity_type", typ, "document", name)
	raw, err := o.src.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	rows, err := ingest.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: parse %s: %w", typ, name, err)
	}
	o.log.Debug("source parsed", "entity_type", typ, "rows", len(rows))
	return rows, nil
}

// existingIDs lists the identifiers already present in the store for a
// type. Uploads check this set before creating, which together with
// deterministic identifiers makes re-runs duplicate-free.
func (o *Orchestrator) existingIDs(ctx context.Context, typ entity.Type) (map[string]bool, error) {
	objs, err := target.ListAll(ctx, o.store, typ, nil, o.maxPages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	ids := make(map[string]bool, len(objs))
	for _, obj := range objs {
		ids[obj.ID()] = true
	}
	return ids, nil
}

// writeRecords dispatches record writes to the bounded worker pool.
// A cancelled context stops dispatching; records already written are
// preserved and the remainder is reported as skipped.
func (o *Orchestrator) writeRecords(ctx context.Context, typ entity.Type, records []entity.Record, existing map[string]bool, t *tally) {
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			t.skip(rec.RecordID(), PhaseWrite, "aborted: "+err.Error())
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rec entity.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			o.writeOne(ctx, typ, rec, existing[rec.RecordID()], t)
		}(rec)
	}
	wg.Wait()
}

// writeOne writes a single record, isolating its failure from the batch.
func (o *Orchestrator) writeOne(ctx context.Context, typ entity.Type, rec entity.Record, exists bool, t *tally) {
	id := rec.RecordID()
	if exists {
		t.skip(id, PhaseWrite, "already present")
		return
	}
	if o.dryRun {
		o.log.Info("dry-run: would create", "entity_type", typ, "id", id)
		t.succeed()
		return
	}
	obj, err := target.Encode(rec)
	if err != nil {
		t.fail(id, PhaseWrite, err.Error())
		return
	}
	if err := o.store.Create(ctx, typ, obj); err != nil {
		t.fail(id, PhaseWrite, err.Error())
		return
	}
	t.succeed()
}

// warnUnknownCode surfaces a legacy coded value that had no mapping.
// The record proceeds with the field unset; nothing is swallowed without
// a trace.
func (o *Orchestrator) warnUnknownCode(row ingest.Row, col, mapped string) {
	if raw := row[col]; raw != "" && mapped == "" {
		o.log.Warn("unknown legacy code, field left unset", "column", col, "code", raw)
	}
}
