// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package cache implements the write-through tracked-collection overlay
// (§4.B) and the per-job PlayoutCache (§4.D) the playout core mutates
// in memory before a single Flush commits everything to the collection
// store in one batch.
package cache

import (
	"context"

	"golang.org/x/sync/errgroup"

	playouterrors "github.com/sofie-broadcast/playout-core/internal/playout/errors"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// entry wraps a tracked document with its dirty bits. A nil *entry stored
// under a still-present map key marks a tombstone: the document was
// removed this job but the id must be remembered so Flush issues a
// DeleteMany for it.
type entry[T any] struct {
	document T
	inserted bool
	updated  bool
}

// ChangedIds is the result of SaveInto: which ids were newly added,
// updated in place, or removed because they no longer matched the filter.
type ChangedIds struct {
	Added   []string
	Updated []string
	Removed []string
}

// TrackedCollection is an in-memory overlay over one collection's
// documents for the duration of a single job (§4.B). All mutation methods
// are synchronous and side-effect-free on the backing store until Flush
// is called.
type TrackedCollection[T store.Doc] struct {
	name string

	documents map[string]*entry[T]
	raw       map[string]T // snapshot as loaded, for DiscardChanges

	isToBeRemoved bool
}

// FromDocuments builds a TrackedCollection pre-populated with docs as
// loaded from the store — none of them are considered dirty.
func FromDocuments[T store.Doc](name string, docs []T) *TrackedCollection[T] {
	c := &TrackedCollection[T]{
		name:      name,
		documents: make(map[string]*entry[T], len(docs)),
		raw:       make(map[string]T, len(docs)),
	}
	for _, d := range docs {
		id := d.DocID()
		c.documents[id] = &entry[T]{document: d}
		c.raw[id] = d
	}
	return c
}

// Name returns the collection name, mainly for diagnostics.
func (c *TrackedCollection[T]) Name() string { return c.name }

func (c *TrackedCollection[T]) assertNotToBeRemoved(op string) error {
	if c.isToBeRemoved {
		return playouterrors.IsToBeRemoved(op)
	}
	return nil
}

// IsModified reports whether any document was inserted, updated, or
// removed since load (or since the last Flush/DiscardChanges).
func (c *TrackedCollection[T]) IsModified() bool {
	if c.isToBeRemoved {
		return true
	}
	for _, e := range c.documents {
		if e == nil {
			return true
		}
		if e.inserted || e.updated {
			return true
		}
	}
	return false
}

// MarkForRemoval discards all documents and blocks further mutation;
// Flush will delete the whole collection's rows for this job's ids.
func (c *TrackedCollection[T]) MarkForRemoval() {
	c.isToBeRemoved = true
	c.documents = map[string]*entry[T]{}
}

// FindAll returns every live (non-removed) document, in unspecified order.
func (c *TrackedCollection[T]) FindAll() []T {
	out := make([]T, 0, len(c.documents))
	for _, e := range c.documents {
		if e != nil {
			out = append(out, e.document)
		}
	}
	return out
}

// FindSome returns every live document for which cb returns true.
func (c *TrackedCollection[T]) FindSome(cb func(T) bool) []T {
	var out []T
	for _, e := range c.documents {
		if e != nil && cb(e.document) {
			out = append(out, e.document)
		}
	}
	return out
}

// FindOneByID returns the live document with the given id, if any.
func (c *TrackedCollection[T]) FindOneByID(id string) (T, bool) {
	var zero T
	e, ok := c.documents[id]
	if !ok || e == nil {
		return zero, false
	}
	return e.document, true
}

// FindOne returns the first live document for which cb returns true.
func (c *TrackedCollection[T]) FindOne(cb func(T) bool) (T, bool) {
	var zero T
	for _, e := range c.documents {
		if e != nil && cb(e.document) {
			return e.document, true
		}
	}
	return zero, false
}

// Insert adds a brand-new document. It errors if a document with the
// same id already exists (live or removed) in this collection.
func (c *TrackedCollection[T]) Insert(doc T) error {
	if err := c.assertNotToBeRemoved("insert"); err != nil {
		return err
	}
	id := doc.DocID()
	if _, exists := c.documents[id]; exists {
		return playouterrors.AlreadyExists(id)
	}
	c.documents[id] = &entry[T]{document: doc, inserted: true}
	return nil
}

// RemoveByID tombstones the document with the given id. It reports
// whether a live document was actually removed.
func (c *TrackedCollection[T]) RemoveByID(id string) (bool, error) {
	if err := c.assertNotToBeRemoved("remove_by_id"); err != nil {
		return false, err
	}
	if e, ok := c.documents[id]; ok && e != nil {
		c.documents[id] = nil
		return true, nil
	}
	return false, nil
}

// RemoveByFilter tombstones every live document matching cb and returns
// their ids.
func (c *TrackedCollection[T]) RemoveByFilter(cb func(T) bool) ([]string, error) {
	if err := c.assertNotToBeRemoved("remove_by_filter"); err != nil {
		return nil, err
	}
	var removed []string
	for id, e := range c.documents {
		if e != nil && cb(e.document) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		c.documents[id] = nil
	}
	return removed, nil
}

// DiscardChanges reverts all mutations back to the as-loaded snapshot.
// A no-op if nothing was modified.
func (c *TrackedCollection[T]) DiscardChanges() {
	if !c.IsModified() {
		return
	}
	c.isToBeRemoved = false
	c.documents = make(map[string]*entry[T], len(c.raw))
	for id, doc := range c.raw {
		c.documents[id] = &entry[T]{document: doc}
	}
}

// UpdateOne applies cb to the live document with the given id. cb
// returns the new document, or the zero value and ok=false to leave it
// unchanged. The new document's id must equal the original.
func (c *TrackedCollection[T]) UpdateOne(id string, cb func(T) (T, bool)) (bool, error) {
	if err := c.assertNotToBeRemoved("update_one"); err != nil {
		return false, err
	}
	e, ok := c.documents[id]
	if !ok || e == nil {
		return false, playouterrors.NotFound(id)
	}
	newDoc, changed := cb(e.document)
	if !changed {
		return false, nil
	}
	if newDoc.DocID() != id {
		return false, playouterrors.IDMismatch(id)
	}
	e.document = newDoc
	e.updated = true
	return true, nil
}

// UpdateAll applies cb to every live document, same contract as UpdateOne
// per-document, and returns the ids that actually changed.
func (c *TrackedCollection[T]) UpdateAll(cb func(T) (T, bool)) ([]string, error) {
	if err := c.assertNotToBeRemoved("update_all"); err != nil {
		return nil, err
	}
	var updated []string
	for id, e := range c.documents {
		if e == nil {
			continue
		}
		newDoc, changed := cb(e.document)
		if !changed {
			continue
		}
		if newDoc.DocID() != id {
			return updated, playouterrors.IDMismatch(id)
		}
		e.document = newDoc
		e.updated = true
		updated = append(updated, id)
	}
	return updated, nil
}

// ReplaceOne inserts or overwrites the document under its own id, and
// reports whether a live document already existed under that id.
func (c *TrackedCollection[T]) ReplaceOne(doc T) (bool, error) {
	if err := c.assertNotToBeRemoved("replace_one"); err != nil {
		return false, err
	}
	id := doc.DocID()
	e, hadLive := c.documents[id]
	hadLive = hadLive && e != nil
	c.documents[id] = &entry[T]{document: doc, inserted: !hadLive, updated: hadLive}
	return hadLive, nil
}

// SaveInto reconciles the subset of live documents matching filter with
// newData: every doc in newData is upserted, and any previously-matching
// document absent from newData is removed. The take state machine uses it
// to resync a next part-instance's playhead-tracking piece-instances
// (§4.H.4).
func (c *TrackedCollection[T]) SaveInto(filter func(T) bool, newData []T) (ChangedIds, error) {
	if err := c.assertNotToBeRemoved("save_into"); err != nil {
		return ChangedIds{}, err
	}

	toRemove := map[string]struct{}{}
	for id, e := range c.documents {
		if e != nil && filter(e.document) {
			toRemove[id] = struct{}{}
		}
	}

	var result ChangedIds
	for _, doc := range newData {
		id := doc.DocID()
		delete(toRemove, id)

		hadLive, err := c.ReplaceOne(doc)
		if err != nil {
			return result, err
		}
		if hadLive {
			result.Updated = append(result.Updated, id)
		} else {
			result.Added = append(result.Added, id)
		}
	}

	for id := range toRemove {
		if _, err := c.RemoveByID(id); err != nil {
			return result, err
		}
		result.Removed = append(result.Removed, id)
	}

	return result, nil
}

// Flush writes every dirty document to backing and deletes every
// tombstoned one, in a single round of concurrent calls (mirroring the
// teacher's errgroup fan-out pattern). It is a no-op beyond a bulk
// delete-all if MarkForRemoval was called.
func (c *TrackedCollection[T]) Flush(ctx context.Context, backing store.Collection[T]) error {
	if c.isToBeRemoved {
		ids := make([]string, 0, len(c.raw))
		for id := range c.raw {
			ids = append(ids, id)
		}
		return backing.DeleteMany(ctx, ids)
	}

	g, gctx := errgroup.WithContext(ctx)
	var removed []string

	for id, e := range c.documents {
		if e == nil {
			removed = append(removed, id)
			continue
		}
		if !e.inserted && !e.updated {
			continue
		}
		id, e := id, e
		g.Go(func() error {
			return backing.ReplaceOne(gctx, id, e.document, true)
		})
	}

	if len(removed) > 0 {
		g.Go(func() error {
			return backing.DeleteMany(gctx, removed)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for id, e := range c.documents {
		if e == nil {
			delete(c.documents, id)
			continue
		}
		e.inserted = false
		e.updated = false
	}
	c.raw = make(map[string]T, len(c.documents))
	for id, e := range c.documents {
		if e != nil {
			c.raw[id] = e.document
		}
	}
	return nil
}
