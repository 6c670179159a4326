// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/infinites"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/timings"
)

// updateOnTakeTimings implements §4.H.6: rebuild take's piece-instances
// through the pruning walk with now_in_part=0 so "Now" starts resolve to
// the moment of take, restrict to each infinite thread's head instance,
// and run the timings calculator against what current is leaving behind.
func updateOnTakeTimings(pc *cache.PlayoutCache, current *model.PartInstance, take model.PartInstance) model.PartCalculatedTimings {
	takePieces := pc.PieceInstances.FindSome(func(pi model.PieceInstance) bool {
		return pi.PartInstanceID == take.ID
	})
	pruned := infinites.ProcessAndPrune(takePieces, 0, false, false)

	toPieces := make([]model.Piece, 0, len(pruned))
	for _, pi := range pruned {
		if pi.Infinite == nil || pi.Infinite.InfiniteInstanceIndex == 0 {
			toPieces = append(toPieces, pi.Piece)
		}
	}

	var fromPart *model.Part
	var fromPieces []model.Piece
	if current != nil {
		fromPart = &current.Part
		for _, pi := range pc.PieceInstances.FindSome(func(pi model.PieceInstance) bool {
			return pi.PartInstanceID == current.ID
		}) {
			fromPieces = append(fromPieces, pi.Piece)
		}
	}

	return timings.Calculate(pc.Playlist.Doc().HoldState, fromPart, fromPieces, take.Part, toPieces)
}
