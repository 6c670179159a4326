// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package infinites

import (
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// candidateLifespans are the only lifespans eligible to carry a piece
// from an earlier part into this one (spec §4.F.2).
var candidateLifespans = []model.PieceLifespan{
	model.LifespanOutOnSegmentEnd,
	model.LifespanOutOnRundownEnd,
	model.LifespanOutOnShowStyleEnd,
}

// ActivationContext carries everything SelectWinners needs to decide
// whether a candidate piece is still active in part, and which candidate
// wins each source-layer slot (spec §4.F.2).
type ActivationContext struct {
	Part                    model.Part
	HasPreviousPartInstance bool
	ContinueShowStyleEnd    bool
	PartsBeforeInSegment    []ids.PartID
	SegmentsBeforeInRundown []ids.SegmentID
	OrderedPartIDs          []ids.PartID
}

// IsPotentiallyActive implements is_piece_potentially_active_in_part.
func IsPotentiallyActive(p model.Piece, ctx ActivationContext) bool {
	switch p.Lifespan {
	case model.LifespanOutOnSegmentEnd:
		return p.StartSegmentID == ctx.Part.SegmentID && containsPartID(ctx.PartsBeforeInSegment, p.StartPartID)
	case model.LifespanOutOnRundownEnd:
		if p.StartRundownID != ctx.Part.RundownID {
			return false
		}
		if p.StartSegmentID == ctx.Part.SegmentID {
			return containsPartID(ctx.PartsBeforeInSegment, p.StartPartID)
		}
		return containsSegmentID(ctx.SegmentsBeforeInRundown, p.StartSegmentID)
	case model.LifespanOutOnShowStyleEnd:
		return ctx.HasPreviousPartInstance && ctx.ContinueShowStyleEnd
	case model.LifespanOutOnSegmentChange, model.LifespanOutOnRundownChange, model.LifespanWithinPart:
		return !ctx.HasPreviousPartInstance
	default:
		return false
	}
}

// SelectWinners narrows possiblePieces down to the piece-per-(layer,
// lifespan) that wins, per the ordering rules of spec §4.F.2. Pieces
// whose start_part_id equals ctx.Part.ID (i.e. not a carried-in
// candidate) pass straight through untouched.
func SelectWinners(possiblePieces []model.Piece, ctx ActivationContext) []model.Piece {
	var straight []model.Piece
	groups := map[string][]model.Piece{}

	for _, p := range possiblePieces {
		if p.StartPartID == ctx.Part.ID {
			straight = append(straight, p)
			continue
		}
		if !isCandidateLifespan(p.Lifespan) {
			continue
		}
		if !IsPotentiallyActive(p, ctx) {
			continue
		}
		key := p.SourceLayerID + "\x00" + string(p.Lifespan)
		groups[key] = append(groups[key], p)
	}

	out := straight
	for _, group := range groups {
		out = append(out, pickLatest(group, ctx.OrderedPartIDs))
	}
	return out
}

func isCandidateLifespan(l model.PieceLifespan) bool {
	for _, c := range candidateLifespans {
		if c == l {
			return true
		}
	}
	return false
}

// pickLatest returns the piece that "starts latest" in rundown order,
// per the tie-break rules of spec §4.F.2.
func pickLatest(group []model.Piece, orderedPartIDs []ids.PartID) model.Piece {
	best := group[0]
	for _, candidate := range group[1:] {
		if isLater(candidate, best, orderedPartIDs) {
			best = candidate
		}
	}
	return best
}

// isLater reports whether a starts later than b.
func isLater(a, b model.Piece, orderedPartIDs []ids.PartID) bool {
	if a.StartPartID == b.StartPartID {
		if a.Enable.Start.IsNow != b.Enable.Start.IsNow {
			return a.Enable.Start.IsNow
		}
		if a.Enable.Start.IsNow {
			return false
		}
		return a.Enable.Start.Offset > b.Enable.Start.Offset
	}

	aIdx, aOk := partOrderIndex(orderedPartIDs, a.StartPartID)
	bIdx, bOk := partOrderIndex(orderedPartIDs, b.StartPartID)
	if !aOk {
		return false
	}
	if !bOk {
		return true
	}
	return aIdx > bIdx
}

func partOrderIndex(orderedPartIDs []ids.PartID, id ids.PartID) (int, bool) {
	for i, p := range orderedPartIDs {
		if p == id {
			return i, true
		}
	}
	return -1, false
}
