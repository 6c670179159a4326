// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store defines the minimal collection-store contract the playout
// core consumes (spec §4.C, §6). The document store itself is an external
// collaborator out of scope for this spec; this package is the interface
// boundary plus an opaque Query builder the core uses to express its
// filters without assuming a specific backing engine.
package store

import "context"

// Doc is satisfied by any document type the store can round-trip; DocID
// returns its primary key as a plain string (the "unprotect" boundary of
// spec §4.A happens exactly once, right here).
type Doc interface {
	DocID() string
}

// Collection is the per-collection query surface spec §4.C and §6 name:
// find_by_id, find_one, find_by_query, find_by_ids, replace_one, delete_many.
// No sort, no projection, no pagination — the core always sorts
// client-side (§4.C, §4.D, §4.E).
type Collection[T Doc] interface {
	FindByID(ctx context.Context, id string) (T, bool, error)
	FindOne(ctx context.Context, q Query) (T, bool, error)
	FindByQuery(ctx context.Context, q Query) ([]T, error)
	FindByIDs(ctx context.Context, ids []string) ([]T, error)
	ReplaceOne(ctx context.Context, id string, doc T, upsert bool) error
	DeleteMany(ctx context.Context, ids []string) error
}

// Query is an opaque filter document (spec §6): equality on a field,
// $in set membership, $ne, $exists, and a top-level $or of sub-queries.
// It is built with the functions below rather than assembled by hand so
// every Collection implementation (in-memory, sqlite, ...) interprets the
// same shape identically.
type Query struct {
	// Eq holds field -> exact-match value pairs, ANDed together.
	Eq map[string]any
	// In holds field -> set-of-values pairs; the field's value must be a
	// member of the set, ANDed with Eq/Ne/Exists.
	In map[string][]any
	// Ne holds field -> value pairs the document's field must NOT equal.
	Ne map[string]any
	// Exists holds field -> required-presence pairs.
	Exists map[string]bool
	// Or is a top-level disjunction of sub-queries; if non-empty, at least
	// one sub-query must match (still ANDed with any Eq/In/Ne/Exists set
	// alongside it).
	Or []Query
}

// NewQuery returns an empty Query ready to be built up with the With*
// helpers below.
func NewQuery() Query {
	return Query{}
}

// WithEq adds an equality constraint and returns the query for chaining.
func (q Query) WithEq(field string, value any) Query {
	if q.Eq == nil {
		q.Eq = map[string]any{}
	}
	q.Eq[field] = value
	return q
}

// WithIn adds a set-membership constraint and returns the query for chaining.
func (q Query) WithIn(field string, values []any) Query {
	if q.In == nil {
		q.In = map[string][]any{}
	}
	q.In[field] = values
	return q
}

// WithNe adds an inequality constraint and returns the query for chaining.
func (q Query) WithNe(field string, value any) Query {
	if q.Ne == nil {
		q.Ne = map[string]any{}
	}
	q.Ne[field] = value
	return q
}

// WithExists adds a presence constraint and returns the query for chaining.
func (q Query) WithExists(field string, present bool) Query {
	if q.Exists == nil {
		q.Exists = map[string]bool{}
	}
	q.Exists[field] = present
	return q
}

// Or returns a query matching any of the given sub-queries.
func Or(subqueries ...Query) Query {
	return Query{Or: subqueries}
}
