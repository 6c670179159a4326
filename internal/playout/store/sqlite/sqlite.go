// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sqlite is a reference store.Collection implementation backed by
// modernc.org/sqlite. It is not the production document store (that is an
// external collaborator, spec §6) but it lets the playout core — and its
// tests — run end-to-end against a real embedded database using the same
// PRAGMA-hardened connection pattern as the rest of this codebase.
//
// Documents are kept as opaque JSON blobs, one table per collection. Query
// filters (store.Query) are evaluated in Go against the decoded document
// rather than translated to SQL, since the core's Query shape is generic
// across document types and collections are small enough (single rundown
// playlist worth of data) that a table scan per query is not a concern.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sofie-broadcast/playout-core/internal/persistence/sqlite"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

const schemaVersion = 1

// Collection is a store.Collection[T] backed by a single sqlite table named
// after the collection. T must be JSON-marshalable and satisfy store.Doc.
type Collection[T store.Doc] struct {
	db    *sql.DB
	table string
}

// Open creates (or reuses) a sqlite-backed database at dbPath, hardened
// with the same WAL/busy_timeout/foreign_keys PRAGMAs as internal/persistence/sqlite.
func Open(dbPath string) (*sql.DB, error) {
	return sqlite.Open(dbPath, sqlite.DefaultConfig())
}

// NewCollection migrates (creating if absent) a table for the given
// collection name and returns a Collection bound to it.
func NewCollection[T store.Doc](db *sql.DB, name string) (*Collection[T], error) {
	c := &Collection[T]{db: db, table: "doc_" + name}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("store/sqlite: migrate %s: %w", name, err)
	}
	return c, nil
}

func (c *Collection[T]) migrate() error {
	var version int
	if err := c.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		// Table may still be missing on a fresh db file sharing this
		// connection with other collections; CREATE IF NOT EXISTS covers it.
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		doc_json TEXT NOT NULL
	)`, c.table)
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}
	if version < schemaVersion {
		if _, err := c.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	row := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT doc_json FROM %s WHERE id = ?", c.table), id)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return zero, false, nil
		}
		return zero, false, err
	}
	var doc T
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return zero, false, fmt.Errorf("store/sqlite: decode %s/%s: %w", c.table, id, err)
	}
	return doc, true, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, q store.Query) (T, bool, error) {
	var zero T
	docs, err := c.FindByQuery(ctx, q)
	if err != nil {
		return zero, false, err
	}
	if len(docs) == 0 {
		return zero, false, nil
	}
	return docs[0], true, nil
}

func (c *Collection[T]) FindByQuery(ctx context.Context, q store.Query) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT doc_json FROM %s", c.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("store/sqlite: decode %s: %w", c.table, err)
		}
		if !matches(fields, q) {
			continue
		}
		var doc T
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("store/sqlite: decode %s: %w", c.table, err)
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}

func (c *Collection[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var results []T
	for _, id := range ids {
		doc, ok, err := c.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, doc)
		}
	}
	return results, nil
}

func (c *Collection[T]) ReplaceOne(ctx context.Context, id string, doc T, upsert bool) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store/sqlite: encode %s/%s: %w", c.table, id, err)
	}
	if !upsert {
		_, exists, err := c.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("store/sqlite: %s/%s: %w", c.table, id, sql.ErrNoRows)
		}
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc_json) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc_json = excluded.doc_json`, c.table)
	_, err = c.db.ExecContext(ctx, query, id, string(raw))
	return err
}

func (c *Collection[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.table)
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// matches evaluates a decoded document's top-level JSON fields against a
// store.Query. Nested-field queries are not needed by any §4 caller today.
func matches(fields map[string]any, q store.Query) bool {
	for field, want := range q.Eq {
		if got, ok := fields[field]; !ok || !equalJSON(got, want) {
			return false
		}
	}
	for field, want := range q.Ne {
		if got, ok := fields[field]; ok && equalJSON(got, want) {
			return false
		}
	}
	for field, wantPresent := range q.Exists {
		_, present := fields[field]
		if present != wantPresent {
			return false
		}
	}
	for field, set := range q.In {
		got, ok := fields[field]
		if !ok {
			return false
		}
		found := false
		for _, v := range set {
			if equalJSON(got, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Or) > 0 {
		anyMatch := false
		for _, sub := range q.Or {
			if matches(fields, sub) {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}
	return true
}

func equalJSON(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ab) == string(bb)
}
