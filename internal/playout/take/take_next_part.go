// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"context"
	"time"

	"github.com/sofie-broadcast/playout-core/internal/log"
	"github.com/sofie-broadcast/playout-core/internal/playout/blueprint"
	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	playouterrors "github.com/sofie-broadcast/playout-core/internal/playout/errors"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/selector"
)

// TakeNextPart implements §4.H.2's precondition chain and thirteen-step
// body: advance the playhead to the current next part-instance, or run the
// hold wind-down if a hold is in progress.
func (s *Scheduler) TakeNextPart(ctx context.Context, pc *cache.PlayoutCache, now time.Time) error {
	playlist := pc.Playlist.Doc()
	if !playlist.IsActive() {
		return playouterrors.NotActive(playlist.ID.Unprotect())
	}

	current, hasCurrent := pc.CurrentPartInstance()

	if hasCurrent && current.BlockTakeUntil != nil && current.BlockTakeUntil.After(now) {
		return playouterrors.TakeBlockedDuration()
	}

	if hasCurrent && current.Part.InTransition != nil && current.Timings.PlannedStartedPlayback != nil {
		transitionEnds := current.Timings.PlannedStartedPlayback.Add(current.Part.InTransition.BlockTakeDuration)
		if now.Before(transitionEnds) && !current.Part.DisableNextInTransition {
			return playouterrors.TakeDuringTransition()
		}
	}

	if hasCurrent && isTooCloseToAutonext(current, now, s.Config.AutonextTakeDebounce) {
		return playouterrors.TakeCloseToAutonext()
	}

	// Step 1/2: hold wind-down short-circuits the rest of the take.
	switch playlist.HoldState {
	case model.HoldComplete:
		_, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
			if p.HoldState == model.HoldNone {
				return p, false
			}
			p.HoldState = model.HoldNone
			return p, true
		})
		if err == nil {
			log.AuditInfo(ctx, "playout.hold_unwound", "hold cycle complete", map[string]any{
				"playlistId": playlist.ID.Unprotect(),
			})
		}
		return err
	case model.HoldActive:
		if err := completeHold(pc, current.ID, now); err != nil {
			return err
		}
		log.AuditInfo(ctx, "playout.hold_completed", "hold completed on current part-instance", map[string]any{
			"playlistId":     playlist.ID.Unprotect(),
			"partInstanceId": current.ID.Unprotect(),
		})
		return nil
	}

	// Step 3.
	take, ok := pc.NextPartInstance()
	if !ok {
		return playouterrors.NoNextPart()
	}

	blueprint.InvokePreTake(ctx, s.Hooks, current, take)

	// Step 4.
	if _, err := pc.PartInstances.UpdateOne(take.ID.Unprotect(), func(pi model.PartInstance) (model.PartInstance, bool) {
		if pi.Timings.PlannedStartedPlayback == nil && pi.Timings.PlannedStoppedPlayback == nil {
			return pi, false
		}
		pi.Timings.PlannedStartedPlayback = nil
		pi.Timings.PlannedStoppedPlayback = nil
		return pi, true
	}); err != nil {
		return err
	}
	take, _ = pc.PartInstances.FindOneByID(take.ID.Unprotect())

	// Step 5.
	if hasCurrent && current.ConsumesNextSegmentID && playlist.NextSegmentID != nil && *playlist.NextSegmentID == current.SegmentID {
		if _, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
			if p.NextSegmentID == nil {
				return p, false
			}
			p.NextSegmentID = nil
			return p, true
		}); err != nil {
			return err
		}
	}

	// Step 6.
	ordered := pc.OrderedSegmentsAndParts()
	nextSelection, hasNextSelection := selector.Select(pc.Playlist.Doc(), &take, nil, ordered, true)

	// Step 7.
	var currentPtr *model.PartInstance
	if hasCurrent {
		currentPtr = &current
	}
	calculated := updateOnTakeTimings(pc, currentPtr, take)
	if _, err := pc.PartInstances.UpdateOne(take.ID.Unprotect(), func(pi model.PartInstance) (model.PartInstance, bool) {
		pi.PartPlayoutTimings = &calculated
		return pi, true
	}); err != nil {
		return err
	}
	take, _ = pc.PartInstances.FindOneByID(take.ID.Unprotect())

	// Step 8.
	var nextHoldState model.HoldState
	if _, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
		if hasCurrent {
			p.PreviousPartInstanceID = &current.ID
		} else {
			p.PreviousPartInstanceID = nil
		}
		p.CurrentPartInstanceID = &take.ID
		p.NextPartInstanceID = nil
		p.HoldState = p.HoldState.Next()
		nextHoldState = p.HoldState
		return p, true
	}); err != nil {
		return err
	}

	// Step 9.
	playOffset := pc.Playlist.Doc().NextTimeOffset
	if _, err := pc.PartInstances.UpdateOne(take.ID.Unprotect(), func(pi model.PartInstance) (model.PartInstance, bool) {
		pi.IsTaken = true
		pi.Timings.Take = &now
		pi.Timings.PlayOffset = playOffset
		return pi, true
	}); err != nil {
		return err
	}
	take, _ = pc.PartInstances.FindOneByID(take.ID.Unprotect())

	log.AuditInfo(ctx, "playout.take", "took next part-instance", map[string]any{
		"playlistId":     playlist.ID.Unprotect(),
		"partInstanceId": take.ID.Unprotect(),
		"takeCount":      take.TakeCount,
	})

	// Step 10.
	if hasCurrent && pc.Playlist.Doc().Loop && take.SegmentID != current.SegmentID {
		var toReset []string
		for _, pi := range pc.PartInstances.FindAll() {
			if pi.SegmentID == current.SegmentID && !pi.Reset {
				toReset = append(toReset, pi.ID.Unprotect())
			}
		}
		if err := resetPartInstances(pc, toReset); err != nil {
			return err
		}
	}

	// Step 11.
	var target *NextTarget
	if hasNextSelection {
		target = &NextTarget{Selected: &nextSelection}
	}
	if target != nil {
		if err := s.SetNextPart(ctx, pc, target, false, nil, now); err != nil {
			return err
		}
	} else {
		if err := s.SetNextPart(ctx, pc, nil, false, nil, now); err != nil {
			return err
		}
	}

	// Step 12.
	if hasCurrent && nextHoldState == model.HoldActive {
		if err := startHold(pc, current.ID, take.ID, now); err != nil {
			return err
		}
	}

	// Step 13.
	blueprint.InvokePostTake(ctx, s.Hooks, current, take)

	return nil
}

// isTooCloseToAutonext implements is_too_close_to_autonext for a manual
// take: current.part.autonext and the remaining time before it would have
// autonexted is under the debounce window.
func isTooCloseToAutonext(current model.PartInstance, now time.Time, debounce time.Duration) bool {
	if !current.Part.Autonext || current.Part.ExpectedDuration == nil {
		return false
	}
	if current.Timings.PlannedStartedPlayback == nil {
		return false
	}
	elapsed := now.Sub(*current.Timings.PlannedStartedPlayback)
	remaining := *current.Part.ExpectedDuration - elapsed
	return remaining < debounce
}
