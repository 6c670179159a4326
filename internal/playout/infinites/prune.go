// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package infinites

import (
	"sort"
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

type priorityRow int

// Row order matches the priority numbering used elsewhere in this
// codebase: onShowStyleEnd is the highest-priority (hardest to evict) row.
const (
	rowOnShowStyleEnd priorityRow = iota
	rowOnRundownEnd
	rowOnSegmentEnd
	rowOther
)

// processOrder is the order in which rows compete for a given time
// instant: other first, then increasingly "sticky" lifespans (§4.F.4).
var processOrder = []priorityRow{rowOther, rowOnSegmentEnd, rowOnRundownEnd, rowOnShowStyleEnd}

func rowOf(lifespan model.PieceLifespan) priorityRow {
	switch lifespan {
	case model.LifespanOutOnShowStyleEnd:
		return rowOnShowStyleEnd
	case model.LifespanOutOnRundownEnd:
		return rowOnRundownEnd
	case model.LifespanOutOnSegmentEnd:
		return rowOnSegmentEnd
	default:
		return rowOther
	}
}

// ProcessAndPrune implements process_and_prune_piece_instance_timings
// (§4.F.4): group piece-instances by effective layer, walk each layer's
// pieces in start-time order deciding which piece occupies which
// priority row, and stamp every surviving piece with its resolved end
// cap (when the next piece on its row starts).
func ProcessAndPrune(pieces []model.PieceInstance, nowInPart time.Duration, keepDisabled, includeVirtual bool) []model.PieceInstance {
	byLayer := map[string][]model.PieceInstance{}
	for _, pi := range pieces {
		key, keep := effectiveLayerKey(pi, keepDisabled)
		if !keep {
			continue
		}
		byLayer[key] = append(byLayer[key], pi)
	}

	var out []model.PieceInstance
	for _, group := range byLayer {
		out = append(out, processLayer(group, nowInPart, includeVirtual)...)
	}
	return out
}

func effectiveLayerKey(pi model.PieceInstance, keepDisabled bool) (string, bool) {
	if pi.Disabled {
		if !keepDisabled {
			return "", false
		}
		return "disabled:" + string(pi.ID), true
	}
	if pi.Piece.ExclusiveGroupID != "" {
		return "group:" + pi.Piece.ExclusiveGroupID, true
	}
	return "layer:" + pi.Piece.SourceLayerID, true
}

type startInstant struct {
	at     time.Duration
	pieces []model.PieceInstance
}

// activeRow tracks the piece currently occupying a priority row. outIdx is
// -1 when the piece was capped by a higher-priority row before ever making
// it into out (§4.F.4's "capped by a higher-priority row" rule) — there is
// then nothing in out left to stamp an end cap onto when the row's
// occupant changes again.
type activeRow struct {
	piece  model.PieceInstance
	outIdx int
}

// processLayer walks one layer's pieces in time order, filling the four
// priority rows and capping whatever was previously occupying a row
// each time a new piece claims it.
func processLayer(pieces []model.PieceInstance, nowInPart time.Duration, includeVirtual bool) []model.PieceInstance {
	groups := groupByStart(pieces, nowInPart)

	active := map[priorityRow]*activeRow{}
	var out []model.PieceInstance

	for _, g := range groups {
		best := bestByRow(g.pieces)

		for _, row := range processOrder {
			cand, ok := best[row]
			if !ok {
				continue
			}

			if prev, has := active[row]; has && prev.outIdx >= 0 {
				out[prev.outIdx].ResolvedEndCap = endCapFor(cand, nowInPart)
			}
			if row != rowOther {
				capOtherRowUnlessPreferable(active, out, cand, nowInPart)
			}

			outIdx := -1
			if !isCappedByHigherPriorityRow(active, row, cand) {
				cand.ResolvedEndCap = model.NoEndCap()
				out = append(out, cand)
				outIdx = len(out) - 1
			}
			active[row] = &activeRow{piece: cand, outIdx: outIdx}
		}
	}

	return filterAndStrip(out, includeVirtual)
}

// isCappedByHigherPriorityRow implements §4.F.4's second virtual-skip
// condition: an onRundownEnd candidate never surfaces while a
// more-important onSegmentEnd piece already occupies that row for the same
// part, and an onShowStyleEnd candidate never surfaces while a
// more-important onSegmentEnd or onRundownEnd piece occupies theirs. Such a
// candidate can never actually be seen, so it is excluded from the result
// the same way a virtual piece on its own row is.
func isCappedByHigherPriorityRow(active map[priorityRow]*activeRow, row priorityRow, cand model.PieceInstance) bool {
	outranked := func(higher priorityRow) bool {
		prev, has := active[higher]
		return has && isCandidateBetterToBeContinued(prev.piece, cand)
	}
	switch row {
	case rowOnRundownEnd:
		return outranked(rowOnSegmentEnd)
	case rowOnShowStyleEnd:
		return outranked(rowOnSegmentEnd) || outranked(rowOnRundownEnd)
	default:
		return false
	}
}

func groupByStart(pieces []model.PieceInstance, nowInPart time.Duration) []startInstant {
	byInstant := map[time.Duration][]model.PieceInstance{}
	for _, pi := range pieces {
		at := pi.Piece.Enable.Start.Offset
		if pi.Piece.Enable.Start.IsNow {
			at = nowInPart
		}
		byInstant[at] = append(byInstant[at], pi)
	}
	out := make([]startInstant, 0, len(byInstant))
	for at, ps := range byInstant {
		out = append(out, startInstant{at: at, pieces: ps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].at < out[j].at })
	return out
}

func bestByRow(pieces []model.PieceInstance) map[priorityRow]model.PieceInstance {
	out := map[priorityRow]model.PieceInstance{}
	for _, p := range pieces {
		row := rowOf(p.Piece.Lifespan)
		if existing, ok := out[row]; ok {
			if isCandidateBetterToBeContinued(p, existing) {
				out[row] = p
			}
		} else {
			out[row] = p
		}
	}
	return out
}

// isCandidateBetterToBeContinued reports whether a should be preferred
// over b when both are eligible for the same row at the same instant.
func isCandidateBetterToBeContinued(a, b model.PieceInstance) bool {
	aPrev := a.Infinite != nil && a.Infinite.FromPreviousPart
	bPrev := b.Infinite != nil && b.Infinite.FromPreviousPart
	if aPrev != bPrev {
		return !aPrev
	}
	if (a.DynamicallyInserted == nil) != (b.DynamicallyInserted == nil) {
		return a.DynamicallyInserted != nil
	}
	if a.DynamicallyInserted != nil && b.DynamicallyInserted != nil && !a.DynamicallyInserted.Equal(*b.DynamicallyInserted) {
		return a.DynamicallyInserted.After(*b.DynamicallyInserted)
	}
	if a.IsAdlib() != b.IsAdlib() {
		return a.IsAdlib()
	}
	if a.Piece.Virtual != b.Piece.Virtual {
		return a.Piece.Virtual
	}
	return string(a.Piece.ID) < string(b.Piece.ID)
}

func endCapFor(next model.PieceInstance, nowInPart time.Duration) model.ResolvedEndCap {
	if next.Piece.Enable.Start.IsNow {
		return model.RelativeEndCap("#piece_group_control_" + string(next.ID) + ".start")
	}
	return model.AbsoluteEndCap(next.Piece.Enable.Start.Offset)
}

// capOtherRowUnlessPreferable implements: a new piece on a non-other row
// caps the other row, unless the new start is exactly 0 and the
// existing other-row entry is preferable under the tie-break.
func capOtherRowUnlessPreferable(active map[priorityRow]*activeRow, out []model.PieceInstance, newPiece model.PieceInstance, nowInPart time.Duration) {
	prev, has := active[rowOther]
	if !has || prev.outIdx < 0 {
		return
	}
	start := newPiece.Piece.Enable.Start
	if !start.IsNow && start.Offset == 0 && isCandidateBetterToBeContinued(out[prev.outIdx], newPiece) {
		return
	}
	out[prev.outIdx].ResolvedEndCap = endCapFor(newPiece, nowInPart)
}

func filterAndStrip(pieces []model.PieceInstance, includeVirtual bool) []model.PieceInstance {
	out := make([]model.PieceInstance, 0, len(pieces))
	for _, pi := range pieces {
		if !includeVirtual && pi.Piece.Virtual && rowOf(pi.Piece.Lifespan) != rowOther {
			continue
		}
		if capEqualsOwnStart(pi) {
			continue
		}
		out = append(out, pi)
	}
	return out
}

// capEqualsOwnStart reports whether a piece was capped at exactly its
// own start, i.e. it never actually plays and should be dropped.
func capEqualsOwnStart(pi model.PieceInstance) bool {
	cap := pi.ResolvedEndCap
	if cap.Kind != model.EndCapAbsolute || pi.Piece.Enable.Start.IsNow {
		return false
	}
	return cap.Absolute == pi.Piece.Enable.Start.Offset
}
