// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package selector implements the pure part-selection function (spec
// §4.E) used both to compute set-next's default target and to recompute
// "what comes after this" during take_next_part.
package selector

import (
	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// Result is the outcome of a successful Select call.
type Result struct {
	PartID                ids.PartID
	SegmentID             ids.SegmentID
	Index                 int
	ConsumesNextSegmentID bool
}

// Select runs the five ordered rules of spec §4.E against an
// already-sorted parts/segments view. previous and currentlySelected may
// both be nil. It reports ok=false when nothing matches.
func Select(
	playlist model.RundownPlaylist,
	previous *model.PartInstance,
	currentlySelected *model.PartInstance,
	sp cache.SegmentsAndParts,
	ignoreUnplayable bool,
) (Result, bool) {
	parts := sp.Parts
	if currentlySelected != nil {
		parts = overlayPart(parts, currentlySelected.Part)
	}

	segmentRank := indexSegments(sp.Segments)
	partIndex := indexParts(parts)

	searchFromIndex := 0
	if previous != nil {
		searchFromIndex = resolveSearchFromIndex(previous, parts, partIndex, segmentRank)
	}

	candidateIndex := firstPlayableFrom(parts, searchFromIndex, ignoreUnplayable)

	consumesNextSegment := false
	if playlist.NextSegmentID != nil {
		differs := previous == nil || candidateIndex < 0 || parts[candidateIndex].SegmentID != previous.SegmentID
		if differs {
			if i, ok := firstPlayableInSegment(parts, *playlist.NextSegmentID, ignoreUnplayable); ok {
				candidateIndex = i
				consumesNextSegment = true
			}
		}
	}

	if candidateIndex < 0 && playlist.Loop && previous != nil {
		limit := searchFromIndex
		if limit > len(parts) {
			limit = len(parts)
		}
		candidateIndex = firstPlayableInRange(parts, 0, limit, ignoreUnplayable)
	}

	if candidateIndex < 0 {
		return Result{}, false
	}

	chosen := parts[candidateIndex]
	return Result{
		PartID:                chosen.ID,
		SegmentID:             chosen.SegmentID,
		Index:                 candidateIndex,
		ConsumesNextSegmentID: consumesNextSegment,
	}, true
}

func overlayPart(parts []model.Part, replacement model.Part) []model.Part {
	out := append([]model.Part(nil), parts...)
	for i, p := range out {
		if p.ID == replacement.ID {
			out[i] = replacement
			return out
		}
	}
	return out
}

func indexParts(parts []model.Part) map[ids.PartID]int {
	out := make(map[ids.PartID]int, len(parts))
	for i, p := range parts {
		out[p.ID] = i
	}
	return out
}

func indexSegments(segments []model.Segment) map[ids.SegmentID]int {
	out := make(map[ids.SegmentID]int, len(segments))
	for i, s := range segments {
		out[s.ID] = i
	}
	return out
}

// resolveSearchFromIndex implements rule 1: position after the previous
// part, or one of its documented fallbacks when the previous part itself
// is no longer in the list (e.g. it was removed by ingest).
func resolveSearchFromIndex(
	previous *model.PartInstance,
	parts []model.Part,
	partIndex map[ids.PartID]int,
	segmentRank map[ids.SegmentID]int,
) int {
	if i, ok := partIndex[previous.Part.ID]; ok {
		return i + 1
	}

	segRank, segKnown := segmentRank[previous.SegmentID]
	if !segKnown {
		return len(parts) + 1
	}

	for i, p := range parts {
		if p.SegmentID == previous.SegmentID {
			return i
		}
	}
	for i, p := range parts {
		if r, ok := segmentRank[p.SegmentID]; ok && r > segRank {
			return i
		}
	}
	return len(parts) + 1
}

func firstPlayableFrom(parts []model.Part, from int, ignoreUnplayable bool) int {
	return firstPlayableInRange(parts, from, len(parts), ignoreUnplayable)
}

func firstPlayableInRange(parts []model.Part, from, to int, ignoreUnplayable bool) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < to && i < len(parts); i++ {
		if !ignoreUnplayable || parts[i].IsPlayable() {
			return i
		}
	}
	return -1
}

func firstPlayableInSegment(parts []model.Part, segmentID ids.SegmentID, ignoreUnplayable bool) (int, bool) {
	for i, p := range parts {
		if p.SegmentID == segmentID && (!ignoreUnplayable || p.IsPlayable()) {
			return i, true
		}
	}
	return 0, false
}
