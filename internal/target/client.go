package target

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberwell/migrate/internal/entity"
)

// Object is one store record in wire form. Every object carries its
// identifier under the "id" key.
type Object map[string]any

// ID returns the record identifier, or "" if absent.
func (o Object) ID() string {
	id, _ := o["id"].(string)
	return id
}

// Field returns the named field rendered as a string, for filter and
// comparison purposes. Absent fields render as "".
func (o Object) Field(name string) string {
	v, ok := o[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Filter is a conjunction of field equality constraints.
type Filter map[string]string

// Matches reports whether the object satisfies every constraint.
func (f Filter) Matches(o Object) bool {
	for k, want := range f {
		if o.Field(k) != want {
			return false
		}
	}
	return true
}

// Page is one page of list results. An empty NextCursor means the end of
// the result set.
type Page struct {
	Items      []Object `json:"items"`
	NextCursor string   `json:"nextCursor"`
}

// Client is the store strategy, injected once at process start.
//
// List returns a single page. Create, Update and Delete report
// single-record failures as *WriteError values rather than aborting - the
// orchestrator depends on this to keep processing the remaining records
// of a batch.
type Client interface {
	List(ctx context.Context, typ entity.Type, filter Filter, cursor string) (Page, error)
	Create(ctx context.Context, typ entity.Type, obj Object) error
	Update(ctx context.Context, typ entity.Type, id string, patch Object) error
	Delete(ctx context.Context, typ entity.Type, id string) error
	Close() error
}

// WriteError is a structured per-record store failure. The migration
// records it and continues with the next record.
type WriteError struct {
	Op         string // "create", "update" or "delete"
	EntityType entity.Type
	ID         string
	Message    string
	Err        error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s/%s: %s: %v", e.Op, e.EntityType, e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %s", e.Op, e.EntityType, e.ID, e.Message)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsWriteError reports whether err is a per-record write failure.
// Uses errors.As to handle wrapped errors.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// Encode converts a typed entity to its wire Object form.
func Encode(rec entity.Record) (Object, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", rec.RecordType(), rec.RecordID(), err)
	}
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", rec.RecordType(), rec.RecordID(), err)
	}
	return obj, nil
}

// DefaultMaxPages bounds pagination loops. A well-behaved store ends a
// listing long before this; the guard exists so a server bug returning
// the same cursor forever cannot hang a run.
const DefaultMaxPages = 1000

// ListAll follows cursors until the store reports the end of the result
// set, accumulating every page in call order.
//
// The loop terminates unconditionally: a cursor that does not advance or
// a page count beyond maxPages is an error, never an infinite loop.
// maxPages <= 0 uses DefaultMaxPages.
func ListAll(ctx context.Context, c Client, typ entity.Type, filter Filter, maxPages int) ([]Object, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var all []Object
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("list %s: exceeded %d pages, aborting", typ, maxPages)
		}
		p, err := c.List(ctx, typ, filter, cursor)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", typ, err)
		}
		all = append(all, p.Items...)
		if p.NextCursor == "" {
			return all, nil
		}
		if p.NextCursor == cursor {
			return nil, fmt.Errorf("list %s: cursor %q did not advance, aborting", typ, cursor)
		}
		cursor = p.NextCursor
	}
}
