// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"

	playouterrors "github.com/sofie-broadcast/playout-core/internal/playout/errors"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// TrackedObject is the §4.B singleton counterpart of TrackedCollection: a
// write-through overlay around exactly one document, used for the single
// playlist a job operates on.
type TrackedObject[T store.Doc] struct {
	name string
	id   string

	document    T
	documentRaw T

	isToBeRemoved bool
	updated       bool
}

// FromDocument wraps doc as the as-loaded snapshot of a TrackedObject.
func FromDocument[T store.Doc](name string, doc T) *TrackedObject[T] {
	return &TrackedObject[T]{
		name:        name,
		id:          doc.DocID(),
		document:    doc,
		documentRaw: doc,
	}
}

// Name returns the object's collection name.
func (o *TrackedObject[T]) Name() string { return o.name }

// ID returns the tracked document's id.
func (o *TrackedObject[T]) ID() string { return o.id }

// Doc returns the current (possibly updated) document.
func (o *TrackedObject[T]) Doc() T { return o.document }

// IsModified reports whether Update has produced a pending change.
func (o *TrackedObject[T]) IsModified() bool { return o.updated }

// MarkForRemoval flags the object for deletion on the next Flush.
func (o *TrackedObject[T]) MarkForRemoval() { o.isToBeRemoved = true }

// DiscardChanges reverts to the as-loaded snapshot.
func (o *TrackedObject[T]) DiscardChanges() {
	if o.updated {
		o.updated = false
		o.document = o.documentRaw
	}
}

// Update applies cb to the current document. cb returns the new document
// and ok=false to leave it unchanged.
func (o *TrackedObject[T]) Update(cb func(T) (T, bool)) (bool, error) {
	if o.isToBeRemoved {
		return false, playouterrors.IsToBeRemoved("update")
	}
	newDoc, changed := cb(o.document)
	if !changed {
		return false, nil
	}
	o.document = newDoc
	o.updated = true
	return true, nil
}

// Flush writes the document if modified, or deletes it if marked for
// removal.
func (o *TrackedObject[T]) Flush(ctx context.Context, backing store.Collection[T]) error {
	if o.isToBeRemoved {
		if err := backing.DeleteMany(ctx, []string{o.id}); err != nil {
			return err
		}
		return nil
	}
	if !o.updated {
		return nil
	}
	if err := backing.ReplaceOne(ctx, o.id, o.document, true); err != nil {
		return err
	}
	o.updated = false
	o.documentRaw = o.document
	return nil
}
