// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package infinites implements the infinite-piece resolver (spec §4.F):
// which pieces from earlier parts/segments/rundowns may still be active
// in a given part, which of them actually win the slot on their source
// layer, and how those winners get wrapped into PieceInstances and
// pruned against each other in time order.
package infinites

import (
	"context"

	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// lifespansOutOnSegment are the lifespans a piece started earlier in the
// same segment can still carry into this part.
var lifespansOutOnSegment = []model.PieceLifespan{
	model.LifespanOutOnSegmentEnd,
	model.LifespanOutOnSegmentChange,
	model.LifespanOutOnRundownEnd,
	model.LifespanOutOnRundownChange,
	model.LifespanOutOnShowStyleEnd,
}

var lifespansOutOnRundown = []model.PieceLifespan{
	model.LifespanOutOnRundownEnd,
	model.LifespanOutOnRundownChange,
	model.LifespanOutOnShowStyleEnd,
}

// IngestPieceSource is the out-of-scope ingest-cache collaborator (§6):
// when it is supplied and names the part's own rundown, it serves the
// same-segment/same-rundown candidate queries instead of the store.
type IngestPieceSource interface {
	RundownID() ids.RundownID
	FindPieces(filter func(model.Piece) bool) []model.Piece
}

// FetchCandidates implements fetch_pieces_that_may_be_active (§4.F.1):
// every piece that might still be active by the time part is reached,
// before winner selection (§4.F.2) narrows it down.
func FetchCandidates(
	ctx context.Context,
	pieces store.Collection[model.Piece],
	pc *cache.PlayoutCache,
	ingest IngestPieceSource,
	part model.Part,
) ([]model.Piece, error) {
	ordered := pc.OrderedSegmentsAndParts()

	partsBeforeInSegment := PartsBeforeInSegment(pc, ordered, part)
	segmentsBeforeInRundown := SegmentsBeforeInRundown(ordered, part)
	rundownsBeforeInPlaylist := RundownsBeforeInPlaylist(pc, part)

	own, err := pieces.FindByQuery(ctx, store.NewQuery().WithEq("startPartId", part.ID.Unprotect()))
	if err != nil {
		return nil, err
	}

	useIngestOverlay := ingest != nil && ingest.RundownID() == part.RundownID

	var fromSameSegmentAndRundown []model.Piece
	if useIngestOverlay {
		fromSameSegmentAndRundown = ingest.FindPieces(func(p model.Piece) bool {
			return matchesQuery1(p, part, partsBeforeInSegment) || matchesQuery2(p, part, segmentsBeforeInRundown)
		})
	} else {
		q := store.Or(
			queryOutOnSegment(part, partsBeforeInSegment),
			queryOutOnRundown(part, segmentsBeforeInRundown),
		)
		fromSameSegmentAndRundown, err = pieces.FindByQuery(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	fromPreviousRundowns, err := pieces.FindByQuery(ctx, queryOutOnShowStyle(rundownsBeforeInPlaylist))
	if err != nil {
		return nil, err
	}

	return dedupeByID(append(append(own, fromSameSegmentAndRundown...), fromPreviousRundowns...)), nil
}

func queryOutOnSegment(part model.Part, partsBeforeInSegment []ids.PartID) store.Query {
	return store.NewQuery().
		WithEq("startSegmentId", part.SegmentID.Unprotect()).
		WithIn("lifespan", lifespanValues(lifespansOutOnSegment)).
		WithIn("startPartId", partIDValues(partsBeforeInSegment)).
		WithEq("invalid", false).
		WithNe("startPartId", part.ID.Unprotect())
}

func queryOutOnRundown(part model.Part, segmentsBeforeInRundown []ids.SegmentID) store.Query {
	return store.NewQuery().
		WithEq("startRundownId", part.RundownID.Unprotect()).
		WithIn("lifespan", lifespanValues(lifespansOutOnRundown)).
		WithIn("startSegmentId", segmentIDValues(segmentsBeforeInRundown))
}

func queryOutOnShowStyle(rundownsBeforeInPlaylist []ids.RundownID) store.Query {
	return store.NewQuery().
		WithEq("lifespan", string(model.LifespanOutOnShowStyleEnd)).
		WithIn("startRundownId", rundownIDValues(rundownsBeforeInPlaylist))
}

func matchesQuery1(p model.Piece, part model.Part, partsBeforeInSegment []ids.PartID) bool {
	if p.StartSegmentID != part.SegmentID || p.Invalid || p.StartPartID == part.ID {
		return false
	}
	if !containsLifespan(lifespansOutOnSegment, p.Lifespan) {
		return false
	}
	return containsPartID(partsBeforeInSegment, p.StartPartID)
}

func matchesQuery2(p model.Piece, part model.Part, segmentsBeforeInRundown []ids.SegmentID) bool {
	if p.StartRundownID != part.RundownID {
		return false
	}
	if !containsLifespan(lifespansOutOnRundown, p.Lifespan) {
		return false
	}
	return containsSegmentID(segmentsBeforeInRundown, p.StartSegmentID)
}

// PartsBeforeInSegment returns the ids of parts in part's own segment
// with lesser rank, plus the embedded Part of any non-orphaned
// part-instance in that segment with lesser rank, sorted by rank.
func PartsBeforeInSegment(pc *cache.PlayoutCache, ordered cache.SegmentsAndParts, part model.Part) []ids.PartID {
	type ranked struct {
		id   ids.PartID
		rank float64
	}
	var candidates []ranked
	for _, p := range ordered.Parts {
		if p.SegmentID == part.SegmentID && p.Rank < part.Rank {
			candidates = append(candidates, ranked{p.ID, p.Rank})
		}
	}
	for _, pi := range pc.PartInstances.FindAll() {
		if pi.Orphaned != model.PartInstanceOrphanedNone {
			continue
		}
		if pi.SegmentID == part.SegmentID && pi.Part.Rank < part.Rank {
			candidates = append(candidates, ranked{pi.Part.ID, pi.Part.Rank})
		}
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].rank < candidates[j-1].rank; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	out := make([]ids.PartID, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

// SegmentsBeforeInRundown returns the ids of segments in part's rundown
// ranked before part's own segment.
func SegmentsBeforeInRundown(ordered cache.SegmentsAndParts, part model.Part) []ids.SegmentID {
	var own *model.Segment
	for i := range ordered.Segments {
		if ordered.Segments[i].ID == part.SegmentID {
			own = &ordered.Segments[i]
			break
		}
	}
	if own == nil {
		return nil
	}
	var out []ids.SegmentID
	for _, s := range ordered.Segments {
		if s.RundownID == part.RundownID && s.Rank < own.Rank {
			out = append(out, s.ID)
		}
	}
	return out
}

// RundownsBeforeInPlaylist returns the ids of rundowns ranked before
// part's own rundown in the playlist's running order.
func RundownsBeforeInPlaylist(pc *cache.PlayoutCache, part model.Part) []ids.RundownID {
	order := pc.Playlist.Doc().RundownIDsInOrder
	var out []ids.RundownID
	for _, id := range order {
		if id == part.RundownID {
			break
		}
		out = append(out, id)
	}
	return out
}

func containsLifespan(set []model.PieceLifespan, v model.PieceLifespan) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPartID(set []ids.PartID, v ids.PartID) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSegmentID(set []ids.SegmentID, v ids.SegmentID) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func lifespanValues(set []model.PieceLifespan) []any {
	out := make([]any, len(set))
	for i, s := range set {
		out[i] = string(s)
	}
	return out
}

func partIDValues(set []ids.PartID) []any {
	out := make([]any, len(set))
	for i, s := range set {
		out[i] = s.Unprotect()
	}
	return out
}

func segmentIDValues(set []ids.SegmentID) []any {
	out := make([]any, len(set))
	for i, s := range set {
		out[i] = s.Unprotect()
	}
	return out
}

func rundownIDValues(set []ids.RundownID) []any {
	out := make([]any, len(set))
	for i, s := range set {
		out[i] = s.Unprotect()
	}
	return out
}

func dedupeByID(pieces []model.Piece) []model.Piece {
	seen := make(map[ids.PieceID]struct{}, len(pieces))
	out := make([]model.Piece, 0, len(pieces))
	for _, p := range pieces {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
