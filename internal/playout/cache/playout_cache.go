// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// Collections is the set of backing store.Collection handles PlayoutCache
// loads from and flushes to. One playout job binds exactly one of these
// (spec §4.D, §6) — it is produced by whatever wires the document store in
// a given deployment, not by this package.
type Collections struct {
	Playlists      store.Collection[model.RundownPlaylist]
	Rundowns       store.Collection[model.Rundown]
	Segments       store.Collection[model.Segment]
	Parts          store.Collection[model.Part]
	PartInstances  store.Collection[model.PartInstance]
	PieceInstances store.Collection[model.PieceInstance]
}

// PlayoutCache is the per-job write-through overlay over everything one
// take/set-next/activation operation can touch (spec §4.D): the single
// playlist document plus the collections of rundowns, segments, parts,
// and the part-instances/piece-instances currently "in play" around the
// playlist's current/next/previous pointers.
type PlayoutCache struct {
	Playlist *TrackedObject[model.RundownPlaylist]

	Rundowns       *TrackedCollection[model.Rundown]
	Segments       *TrackedCollection[model.Segment]
	Parts          *TrackedCollection[model.Part]
	PartInstances  *TrackedCollection[model.PartInstance]
	PieceInstances *TrackedCollection[model.PieceInstance]
}

// Load fetches the playlist and everything currently relevant around it
// and assembles a PlayoutCache, running the independent collection
// queries concurrently (mirroring the teacher's errgroup fan-out).
func Load(ctx context.Context, collections Collections, playlistID string) (*PlayoutCache, error) {
	playlist, ok, err := collections.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("cache: load playlist %s: %w", playlistID, err)
	}
	if !ok {
		return nil, fmt.Errorf("cache: RundownPlaylist %q was not found", playlistID)
	}

	rundowns, err := collections.Rundowns.FindByQuery(ctx,
		store.NewQuery().WithEq("playlistId", playlistID))
	if err != nil {
		return nil, fmt.Errorf("cache: load rundowns: %w", err)
	}

	rundownIDs := make([]any, len(rundowns))
	for i, rd := range rundowns {
		rundownIDs[i] = rd.DocID()
	}

	selectedPartInstanceIDs := selectedInstanceIDs(playlist)

	var segments []model.Segment
	var parts []model.Part
	var partInstances []model.PartInstance
	var pieceInstances []model.PieceInstance

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		segments, err = collections.Segments.FindByQuery(gctx,
			store.NewQuery().WithIn("rundownId", rundownIDs))
		return err
	})

	g.Go(func() error {
		var err error
		parts, err = collections.Parts.FindByQuery(gctx,
			store.NewQuery().WithIn("rundownId", rundownIDs))
		return err
	})

	g.Go(func() error {
		instances, err := collections.PartInstances.FindByQuery(gctx,
			store.NewQuery().WithIn("_id", toAny(selectedPartInstanceIDs)))
		if err != nil {
			return err
		}
		segmentIDs := uniqueSegmentIDs(instances)

		q := store.Or(
			store.NewQuery().
				WithIn("rundownId", rundownIDs).
				WithIn("segmentId", toAny(segmentIDs)).
				WithNe("reset", true),
			store.NewQuery().WithIn("_id", toAny(selectedPartInstanceIDs)),
		)
		if playlist.ActivationID != nil {
			q = q.WithEq("playlistActivationId", string(*playlist.ActivationID))
		}
		var err2 error
		partInstances, err2 = collections.PartInstances.FindByQuery(gctx, q)
		return err2
	})

	g.Go(func() error {
		q := store.NewQuery().
			WithIn("rundownId", rundownIDs).
			WithIn("partInstanceId", toAny(selectedPartInstanceIDs))
		if playlist.ActivationID != nil {
			q = q.WithEq("playlistActivationId", string(*playlist.ActivationID))
		}
		var err error
		pieceInstances, err = collections.PieceInstances.FindByQuery(gctx, q)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cache: load %s: %w", playlistID, err)
	}

	return &PlayoutCache{
		Playlist:       FromDocument("rundownPlaylist", playlist),
		Rundowns:       FromDocuments("rundowns", rundowns),
		Segments:       FromDocuments("segments", segments),
		Parts:          FromDocuments("parts", parts),
		PartInstances:  FromDocuments("partInstances", partInstances),
		PieceInstances: FromDocuments("pieceInstances", pieceInstances),
	}, nil
}

func selectedInstanceIDs(playlist model.RundownPlaylist) []string {
	var ids []string
	seen := map[string]struct{}{}
	add := func(id *string) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	if playlist.CurrentPartInstanceID != nil {
		s := string(*playlist.CurrentPartInstanceID)
		add(&s)
	}
	if playlist.NextPartInstanceID != nil {
		s := string(*playlist.NextPartInstanceID)
		add(&s)
	}
	if playlist.PreviousPartInstanceID != nil {
		s := string(*playlist.PreviousPartInstanceID)
		add(&s)
	}
	return ids
}

func uniqueSegmentIDs(instances []model.PartInstance) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, pi := range instances {
		id := pi.SegmentID.Unprotect()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// CurrentPartInstance returns the PartInstance pointed to by the
// playlist's currentPartInstanceId, if any.
func (c *PlayoutCache) CurrentPartInstance() (model.PartInstance, bool) {
	id := c.Playlist.Doc().CurrentPartInstanceID
	if id == nil {
		return model.PartInstance{}, false
	}
	return c.PartInstances.FindOneByID(string(*id))
}

// NextPartInstance returns the PartInstance pointed to by the playlist's
// nextPartInstanceId, if any.
func (c *PlayoutCache) NextPartInstance() (model.PartInstance, bool) {
	id := c.Playlist.Doc().NextPartInstanceID
	if id == nil {
		return model.PartInstance{}, false
	}
	return c.PartInstances.FindOneByID(string(*id))
}

// PreviousPartInstance returns the PartInstance pointed to by the
// playlist's previousPartInstanceId, if any.
func (c *PlayoutCache) PreviousPartInstance() (model.PartInstance, bool) {
	id := c.Playlist.Doc().PreviousPartInstanceID
	if id == nil {
		return model.PartInstance{}, false
	}
	return c.PartInstances.FindOneByID(string(*id))
}

// SegmentsAndParts is the playlist's segments and parts, both sorted into
// rundown-then-segment playout order (spec §4.D, §4.E).
type SegmentsAndParts struct {
	Segments []model.Segment
	Parts    []model.Part
}

// OrderedSegmentsAndParts returns every segment and part reachable from
// this cache, ordered by the playlist's rundown order and each entity's
// rank within its parent.
func (c *PlayoutCache) OrderedSegmentsAndParts() SegmentsAndParts {
	segments := SortSegmentsInRundowns(c.Segments.FindAll(), c.Playlist.Doc().RundownIDsInOrder)
	parts := SortPartsInSortedSegments(c.Parts.FindAll(), segments)
	return SegmentsAndParts{Segments: segments, Parts: parts}
}

// RundownIDs returns every rundown id currently tracked by this cache.
func (c *PlayoutCache) RundownIDs() []string {
	rundowns := c.Rundowns.FindAll()
	ids := make([]string, len(rundowns))
	for i, rd := range rundowns {
		ids[i] = rd.DocID()
	}
	return ids
}

// ShowStyleBaseIDsByRundown maps each tracked rundown id to its show
// style base id.
func (c *PlayoutCache) ShowStyleBaseIDsByRundown() map[string]string {
	out := map[string]string{}
	for _, rd := range c.Rundowns.FindAll() {
		out[rd.DocID()] = rd.ShowStyleBaseID.Unprotect()
	}
	return out
}

// DiscardChanges reverts every tracked object and collection in this
// cache back to its as-loaded snapshot.
func (c *PlayoutCache) DiscardChanges() {
	c.Playlist.DiscardChanges()
	c.Rundowns.DiscardChanges()
	c.Segments.DiscardChanges()
	c.Parts.DiscardChanges()
	c.PartInstances.DiscardChanges()
	c.PieceInstances.DiscardChanges()
}

// BulkUpdate runs fn against this cache's tracked collections and
// objects. If fn returns an error, DiscardChanges is called before the
// error is returned: every tracked collection and object goes back to its
// as-loaded state, so mutations made earlier in the same job, before this
// call, are discarded as well.
func (c *PlayoutCache) BulkUpdate(fn func() error) error {
	if err := fn(); err != nil {
		c.DiscardChanges()
		return err
	}
	return nil
}

// Flush writes every modified tracked object/collection to backing in
// one round of concurrent calls.
func (c *PlayoutCache) Flush(ctx context.Context, collections Collections) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Playlist.Flush(gctx, collections.Playlists) })
	g.Go(func() error { return c.Rundowns.Flush(gctx, collections.Rundowns) })
	g.Go(func() error { return c.Segments.Flush(gctx, collections.Segments) })
	g.Go(func() error { return c.Parts.Flush(gctx, collections.Parts) })
	g.Go(func() error { return c.PartInstances.Flush(gctx, collections.PartInstances) })
	g.Go(func() error { return c.PieceInstances.Flush(gctx, collections.PieceInstances) })
	return g.Wait()
}

// SortSegmentsInRundowns orders segments by the owning rundown's position
// in rundownIDsInOrder, then by rank within the rundown. A segment whose
// rundown is not in the list sorts last.
func SortSegmentsInRundowns(segments []model.Segment, rundownIDsInOrder []ids.RundownID) []model.Segment {
	rank := rundownRankLookup(rundownIDsInOrder)
	out := append([]model.Segment(nil), segments...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RundownID == b.RundownID {
			return a.Rank < b.Rank
		}
		ra, oka := rank[a.RundownID.Unprotect()]
		rb, okb := rank[b.RundownID.Unprotect()]
		if !oka {
			ra = len(rundownIDsInOrder)
		}
		if !okb {
			rb = len(rundownIDsInOrder)
		}
		return ra < rb
	})
	return out
}

// SortPartsInSortedSegments orders parts by their owning segment's
// position in sortedSegments, then by rank within the segment.
func SortPartsInSortedSegments(parts []model.Part, sortedSegments []model.Segment) []model.Part {
	rank := make(map[string]int, len(sortedSegments))
	for i, seg := range sortedSegments {
		rank[seg.ID.Unprotect()] = i
	}
	out := append([]model.Part(nil), parts...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SegmentID == b.SegmentID {
			return a.Rank < b.Rank
		}
		ra, oka := rank[a.SegmentID.Unprotect()]
		rb, okb := rank[b.SegmentID.Unprotect()]
		if !oka {
			ra = len(sortedSegments)
		}
		if !okb {
			rb = len(sortedSegments)
		}
		return ra < rb
	})
	return out
}

func rundownRankLookup(rundownIDs []ids.RundownID) map[string]int {
	out := make(map[string]int, len(rundownIDs))
	for i, id := range rundownIDs {
		out[id.Unprotect()] = i
	}
	return out
}
