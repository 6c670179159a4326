// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	playouterrors "github.com/sofie-broadcast/playout-core/internal/playout/errors"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

type widget struct {
	ID    string
	Value int
}

func (w widget) DocID() string { return w.ID }

func TestInsertAndFindOneByID(t *testing.T) {
	c := cache.FromDocuments[widget]("widgets", nil)
	require.NoError(t, c.Insert(widget{ID: "a", Value: 1}))

	got, ok := c.FindOneByID("a")
	require.True(t, ok)
	require.Equal(t, 1, got.Value)

	require.ErrorIs(t, c.Insert(widget{ID: "a", Value: 2}), playouterrors.ErrAlreadyExists)
}

func TestRemoveByIDTombstones(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a"}, {ID: "b"}})

	removed, err := c.RemoveByID("a")
	require.NoError(t, err)
	require.True(t, removed)

	_, ok := c.FindOneByID("a")
	require.False(t, ok)
	require.Len(t, c.FindAll(), 1)
}

func TestUpdateOneRejectsIDMismatch(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a", Value: 1}})

	_, err := c.UpdateOne("a", func(w widget) (widget, bool) {
		w.ID = "b"
		return w, true
	})
	require.ErrorIs(t, err, playouterrors.ErrIDMismatch)
}

func TestUpdateOneAppliesChange(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a", Value: 1}})

	changed, err := c.UpdateOne("a", func(w widget) (widget, bool) {
		w.Value = 99
		return w, true
	})
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, c.IsModified())

	got, _ := c.FindOneByID("a")
	require.Equal(t, 99, got.Value)
}

func TestDiscardChangesRevertsToSnapshot(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a", Value: 1}})

	_, err := c.UpdateOne("a", func(w widget) (widget, bool) {
		w.Value = 99
		return w, true
	})
	require.NoError(t, err)
	require.NoError(t, c.Insert(widget{ID: "b", Value: 2}))

	c.DiscardChanges()
	require.False(t, c.IsModified())
	require.Len(t, c.FindAll(), 1)
	got, _ := c.FindOneByID("a")
	require.Equal(t, 1, got.Value)
}

func TestSaveIntoReconciles(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{
		{ID: "a", Value: 1},
		{ID: "b", Value: 2},
		{ID: "keep-out", Value: 100},
	})

	changed, err := c.SaveInto(
		func(w widget) bool { return w.ID != "keep-out" },
		[]widget{{ID: "a", Value: 10}, {ID: "c", Value: 3}},
	)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c"}, changed.Added)
	require.ElementsMatch(t, []string{"a"}, changed.Updated)
	require.ElementsMatch(t, []string{"b"}, changed.Removed)

	all := c.FindAll()
	require.Len(t, all, 3) // a, c, keep-out
}

func TestMarkForRemovalBlocksMutation(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a"}})
	c.MarkForRemoval()

	require.ErrorIs(t, c.Insert(widget{ID: "b"}), playouterrors.ErrIsToBeRemoved)
	require.True(t, c.IsModified())
}

type fakeBacking struct {
	replaced map[string]widget
	deleted  []string
}

func (f *fakeBacking) FindByID(ctx context.Context, id string) (widget, bool, error) {
	w, ok := f.replaced[id]
	return w, ok, nil
}
func (f *fakeBacking) FindOne(ctx context.Context, q store.Query) (widget, bool, error) {
	return widget{}, false, nil
}
func (f *fakeBacking) FindByQuery(ctx context.Context, q store.Query) ([]widget, error) {
	return nil, nil
}
func (f *fakeBacking) FindByIDs(ctx context.Context, ids []string) ([]widget, error) {
	return nil, nil
}
func (f *fakeBacking) ReplaceOne(ctx context.Context, id string, doc widget, upsert bool) error {
	if f.replaced == nil {
		f.replaced = map[string]widget{}
	}
	f.replaced[id] = doc
	return nil
}
func (f *fakeBacking) DeleteMany(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func TestFlushWritesDirtyAndDeletesTombstones(t *testing.T) {
	c := cache.FromDocuments("widgets", []widget{{ID: "a", Value: 1}, {ID: "b", Value: 2}})

	_, err := c.UpdateOne("a", func(w widget) (widget, bool) {
		w.Value = 10
		return w, true
	})
	require.NoError(t, err)
	_, err = c.RemoveByID("b")
	require.NoError(t, err)

	backing := &fakeBacking{}
	require.NoError(t, c.Flush(context.Background(), backing))

	require.Equal(t, widget{ID: "a", Value: 10}, backing.replaced["a"])
	require.ElementsMatch(t, []string{"b"}, backing.deleted)
	require.False(t, c.IsModified())
}
