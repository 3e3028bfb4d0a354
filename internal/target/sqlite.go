package target

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emberwell/migrate/internal/entity"
)

//go:embed schema.sql
var schemaSQL string

// DefaultPageSize is the number of raw rows scanned per list page.
const DefaultPageSize = 100

// SQLiteClient is the local target store strategy, used for staging
// migrations and tests. Uses SQLite with WAL mode for concurrent read
// access.
//
// Create is an upsert by (entity_type, id): re-running an upload against
// this store can never duplicate a record.
type SQLiteClient struct {
	db       *sql.DB
	pageSize int
}

// OpenSQLite creates or opens a local store at the given path.
// Applies required pragmas and the schema automatically; safe to call
// against an existing database.
func OpenSQLite(path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect local store: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under the bounded write workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteClient{db: db, pageSize: DefaultPageSize}, nil
}

// Close closes the database connection.
func (c *SQLiteClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SetPageSize overrides the list page size. Intended for tests.
func (c *SQLiteClient) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

// Create upserts the object by (entity_type, id).
func (c *SQLiteClient) Create(ctx context.Context, typ entity.Type, obj Object) error {
	id := obj.ID()
	if id == "" {
		return &WriteError{Op: "create", EntityType: typ, Message: "object has no id"}
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return &WriteError{Op: "create", EntityType: typ, ID: id, Message: "marshal body", Err: err}
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entities (entity_type, id, body)
		VALUES (?, ?, ?)
		ON CONFLICT(entity_type, id) DO UPDATE SET body = excluded.body
	`, string(typ), id, string(body))
	if err != nil {
		return &WriteError{Op: "create", EntityType: typ, ID: id, Message: "insert", Err: err}
	}
	return nil
}

// Update applies a partial patch to an existing record. Only the fields
// present in the patch are replaced; everything else in the stored body
// is preserved.
func (c *SQLiteClient) Update(ctx context.Context, typ entity.Type, id string, patch Object) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "begin tx", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE entity_type = ? AND id = ?`,
		string(typ), id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "record not found"}
	}
	if err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "read body", Err: err}
	}

	var obj Object
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "decode body", Err: err}
	}
	for k, v := range patch {
		obj[k] = v
	}
	merged, err := json.Marshal(obj)
	if err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "marshal body", Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE entities SET body = ? WHERE entity_type = ? AND id = ?`,
		string(merged), string(typ), id,
	); err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "write body", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "commit", Err: err}
	}
	return nil
}

// Delete removes a record. Deleting a record that does not exist is a
// no-op, keeping bulk cleanup re-runnable.
func (c *SQLiteClient) Delete(ctx context.Context, typ entity.Type, id string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM entities WHERE entity_type = ? AND id = ?`,
		string(typ), id,
	)
	if err != nil {
		return &WriteError{Op: "delete", EntityType: typ, ID: id, Message: "delete", Err: err}
	}
	return nil
}

// List returns one page of records in insertion order. The cursor is the
// seq of the last scanned row; filtering happens after the scan, so a
// filtered page may hold fewer than pageSize items while the cursor still
// advances.
func (c *SQLiteClient) List(ctx context.Context, typ entity.Type, filter Filter, cursor string) (Page, error) {
	afterSeq := int64(0)
	if cursor != "" {
		n, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return Page{}, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		afterSeq = n
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT seq, body FROM entities
		WHERE entity_type = ? AND seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, string(typ), afterSeq, c.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var (
		items   []Object
		lastSeq int64
		scanned int
	)
	for rows.Next() {
		var (
			seq  int64
			body string
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return Page{}, fmt.Errorf("scan entity: %w", err)
		}
		scanned++
		lastSeq = seq

		var obj Object
		if err := json.Unmarshal([]byte(body), &obj); err != nil {
			return Page{}, fmt.Errorf("decode entity at seq %d: %w", seq, err)
		}
		if filter.Matches(obj) {
			items = append(items, obj)
		}
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate entities: %w", err)
	}

	page := Page{Items: items}
	if scanned == c.pageSize {
		page.NextCursor = strconv.FormatInt(lastSeq, 10)
	}
	return page, nil
}
