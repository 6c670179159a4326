// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/idgen"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// startHold implements §4.H.3: every extend_on_hold piece-instance on
// fromID not already part of an infinite thread gets a continuation bound
// to toID, and the source is retroactively marked as the head of that
// thread.
func startHold(pc *cache.PlayoutCache, fromID, toID ids.PartInstanceID, now time.Time) error {
	sourcePieces := pc.PieceInstances.FindSome(func(pi model.PieceInstance) bool {
		return pi.PartInstanceID == fromID && pi.Piece.ExtendOnHold && pi.Infinite == nil
	})

	for _, source := range sourcePieces {
		threadID := ids.PieceInstanceInfiniteID(idgen.Fresh())

		if _, err := pc.PieceInstances.UpdateOne(source.ID.Unprotect(), func(pi model.PieceInstance) (model.PieceInstance, bool) {
			pi.Infinite = &model.PieceInstanceInfinite{
				InfiniteInstanceID:    threadID,
				InfiniteInstanceIndex: 0,
				InfinitePieceID:       pi.Piece.ID,
			}
			return pi, true
		}); err != nil {
			return err
		}

		continuation := source
		continuation.ID = ids.PieceInstanceID(string(source.ID) + "_hold")
		continuation.PartInstanceID = toID
		continuation.DynamicallyInserted = &now
		continuation.Piece.ExtendOnHold = false
		continuation.Piece.Enable.Start = model.Offset(0)
		continuation.Infinite = &model.PieceInstanceInfinite{
			InfiniteInstanceID:    threadID,
			InfiniteInstanceIndex: 1,
			InfinitePieceID:       source.Piece.ID,
			FromPreviousPart:      true,
			FromHold:              true,
		}
		continuation.PlannedStartedPlayback = nil
		continuation.PlannedStoppedPlayback = nil
		continuation.ReportedStartedPlayback = source.ReportedStartedPlayback
		continuation.ReportedStoppedPlayback = source.ReportedStoppedPlayback

		if _, err := pc.PieceInstances.ReplaceOne(continuation); err != nil {
			return err
		}
	}

	return nil
}

// completeHold implements §4.H.3's complete_hold: hold_state becomes
// Complete and every from_hold piece-instance on currentID is stopped.
func completeHold(pc *cache.PlayoutCache, currentID ids.PartInstanceID, now time.Time) error {
	if _, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
		if p.HoldState == model.HoldComplete {
			return p, false
		}
		p.HoldState = model.HoldComplete
		return p, true
	}); err != nil {
		return err
	}

	stopAt := now
	_, err := pc.PieceInstances.UpdateAll(func(pi model.PieceInstance) (model.PieceInstance, bool) {
		if pi.PartInstanceID != currentID || pi.Infinite == nil || !pi.Infinite.FromHold {
			return pi, false
		}
		if pi.PlannedStoppedPlayback != nil {
			return pi, false
		}
		pi.PlannedStoppedPlayback = &stopAt
		return pi, true
	})
	return err
}
