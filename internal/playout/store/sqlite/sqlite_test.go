// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofie-broadcast/playout-core/internal/playout/store"
	playoutsqlite "github.com/sofie-broadcast/playout-core/internal/playout/store/sqlite"
)

type fakeDoc struct {
	ID       string `json:"id"`
	Rundown  string `json:"rundown_id"`
	Rank     float64
	Floated  bool `json:"floated"`
}

func (d fakeDoc) DocID() string { return d.ID }

func openTestCollection(t *testing.T) *playoutsqlite.Collection[fakeDoc] {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "parts.db")
	db, err := playoutsqlite.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	col, err := playoutsqlite.NewCollection[fakeDoc](db, "parts")
	require.NoError(t, err)
	return col
}

func TestReplaceOneAndFindByID(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	doc := fakeDoc{ID: "p1", Rundown: "r1", Rank: 1}
	require.NoError(t, col.ReplaceOne(ctx, doc.ID, doc, true))

	got, ok, err := col.FindByID(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, doc, got)

	_, ok, err = col.FindByID(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReplaceOneWithoutUpsertRequiresExisting(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	err := col.ReplaceOne(ctx, "p1", fakeDoc{ID: "p1"}, false)
	require.Error(t, err)
}

func TestFindByQueryEqAndNe(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	require.NoError(t, col.ReplaceOne(ctx, "p1", fakeDoc{ID: "p1", Rundown: "r1", Floated: false}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p2", fakeDoc{ID: "p2", Rundown: "r1", Floated: true}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p3", fakeDoc{ID: "p3", Rundown: "r2", Floated: false}, true))

	q := store.NewQuery().WithEq("rundown_id", "r1").WithEq("floated", false)
	results, err := col.FindByQuery(ctx, q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "p1", results[0].ID)

	q2 := store.NewQuery().WithNe("rundown_id", "r2")
	results2, err := col.FindByQuery(ctx, q2)
	require.NoError(t, err)
	require.Len(t, results2, 2)
}

func TestFindByQueryIn(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	require.NoError(t, col.ReplaceOne(ctx, "p1", fakeDoc{ID: "p1", Rundown: "r1"}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p2", fakeDoc{ID: "p2", Rundown: "r2"}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p3", fakeDoc{ID: "p3", Rundown: "r3"}, true))

	q := store.NewQuery().WithIn("rundown_id", []any{"r1", "r3"})
	results, err := col.FindByQuery(ctx, q)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestFindByQueryOr(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	require.NoError(t, col.ReplaceOne(ctx, "p1", fakeDoc{ID: "p1", Rundown: "r1", Floated: true}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p2", fakeDoc{ID: "p2", Rundown: "r2", Floated: false}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p3", fakeDoc{ID: "p3", Rundown: "r3", Floated: false}, true))

	q := store.Or(
		store.NewQuery().WithEq("floated", true),
		store.NewQuery().WithEq("rundown_id", "r3"),
	)
	results, err := col.FindByQuery(ctx, q)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestFindByIDsAndDeleteMany(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	require.NoError(t, col.ReplaceOne(ctx, "p1", fakeDoc{ID: "p1"}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p2", fakeDoc{ID: "p2"}, true))
	require.NoError(t, col.ReplaceOne(ctx, "p3", fakeDoc{ID: "p3"}, true))

	got, err := col.FindByIDs(ctx, []string{"p1", "p3", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NoError(t, col.DeleteMany(ctx, []string{"p1", "p2"}))
	remaining, err := col.FindByIDs(ctx, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "p3", remaining[0].ID)
}
