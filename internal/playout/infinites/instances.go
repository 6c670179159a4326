// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package infinites

import (
	"github.com/sofie-broadcast/playout-core/internal/playout/idgen"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// WrapToPieceInstances implements the first half of §4.F.3: binding each
// winning piece to newInstanceID and, for infinite (non-WithinPart)
// pieces, threading the infinite-instance bookkeeping that lets a
// continued piece be recognised as "the same thread" across parts.
//
// playing is the set of piece-instances currently on air, used to find a
// continuation to extend rather than starting a fresh infinite thread.
func WrapToPieceInstances(
	winners []model.Piece,
	part model.Part,
	newInstanceID ids.PartInstanceID,
	rundownID ids.RundownID,
	activationID ids.PlaylistActivationID,
	playing []model.PieceInstance,
) []model.PieceInstance {
	playingByInfinitePieceID := map[ids.PieceID]model.PieceInstance{}
	for _, pi := range playing {
		if pi.Infinite != nil {
			playingByInfinitePieceID[pi.Infinite.InfinitePieceID] = pi
		}
	}

	out := make([]model.PieceInstance, 0, len(winners))
	for _, piece := range winners {
		instance := model.PieceInstance{
			ID:                   ids.PieceInstanceID(idgen.WithPrefix(string(newInstanceID))),
			RundownID:            rundownID,
			PartInstanceID:       newInstanceID,
			PlaylistActivationID: activationID,
			Piece:                piece,
		}

		if piece.Lifespan == model.LifespanWithinPart {
			out = append(out, instance)
			continue
		}

		fromPreviousPart := piece.StartPartID != part.ID

		var infiniteInstanceID ids.PieceInstanceInfiniteID
		infiniteInstanceIndex := 0

		if continuing, ok := playingByInfinitePieceID[piece.ID]; ok {
			infiniteInstanceID = continuing.Infinite.InfiniteInstanceID
			infiniteInstanceIndex = continuing.Infinite.InfiniteInstanceIndex + 1
			instance.ID = ids.PieceInstanceID(string(continuing.ID) + "_continue")
			instance.DynamicallyInserted = continuing.DynamicallyInserted
			instance.AdlibSourceID = continuing.AdlibSourceID
			instance.ReportedStartedPlayback = continuing.ReportedStartedPlayback
		} else {
			infiniteInstanceID = ids.PieceInstanceInfiniteID(idgen.Fresh())
		}

		instance.Infinite = &model.PieceInstanceInfinite{
			InfiniteInstanceID:    infiniteInstanceID,
			InfiniteInstanceIndex: infiniteInstanceIndex,
			InfinitePieceID:       piece.ID,
			FromPreviousPart:      fromPreviousPart,
		}

		if fromPreviousPart {
			instance.Piece.Enable.Start = model.Offset(0)
			instance.Piece.Enable.Duration = nil
		}

		out = append(out, instance)
	}
	return out
}

// PlayheadTrackingInput carries the state PlayheadTrackingInfinites needs
// beyond the playing piece-instances themselves.
type PlayheadTrackingInput struct {
	CurrentInstance    model.PartInstance
	NextPart           model.Part
	NextPartInstanceID ids.PartInstanceID
	NextIsAfterCurrent bool
	ActivationContext  ActivationContext
}

// PlayheadTrackingInfinites implements get_playhead_tracking_infinites_for_part:
// continuations of whatever is still playing on the current part-instance
// into the next one, independent of the winners already computed from
// static candidates.
func PlayheadTrackingInfinites(playing []model.PieceInstance, in PlayheadTrackingInput) []model.PieceInstance {
	bySourceLayer := map[string][]model.PieceInstance{}
	for _, pi := range playing {
		if pi.PlannedStoppedPlayback != nil || pi.UserDuration != nil {
			continue
		}
		bySourceLayer[pi.Piece.SourceLayerID] = append(bySourceLayer[pi.Piece.SourceLayerID], pi)
	}

	var out []model.PieceInstance
	for _, group := range bySourceLayer {
		latest := pickLatestInstance(group)
		if admitted, ok := admitPlayheadContinuation(latest, in); ok {
			out = append(out, admitted)
		}
	}

	if in.NextIsAfterCurrent {
		out = append(out, adlibPlayheadPromotions(bySourceLayer, in)...)
	}

	return out
}

func pickLatestInstance(group []model.PieceInstance) model.PieceInstance {
	best := group[0]
	for _, candidate := range group[1:] {
		if isLaterInstance(candidate, best) {
			best = candidate
		}
	}
	return best
}

func isLaterInstance(a, b model.PieceInstance) bool {
	if a.Piece.Enable.Start.IsNow != b.Piece.Enable.Start.IsNow {
		return a.Piece.Enable.Start.IsNow
	}
	if a.Piece.Enable.Start.IsNow {
		return false
	}
	return a.Piece.Enable.Start.Offset > b.Piece.Enable.Start.Offset
}

func admitPlayheadContinuation(pi model.PieceInstance, in PlayheadTrackingInput) (model.PieceInstance, bool) {
	switch pi.Piece.Lifespan {
	case model.LifespanOutOnSegmentChange:
		if pi.Piece.StartSegmentID != in.NextPart.SegmentID {
			return model.PieceInstance{}, false
		}
	case model.LifespanOutOnRundownChange:
		if pi.Piece.StartRundownID != in.NextPart.RundownID {
			return model.PieceInstance{}, false
		}
	default:
		return model.PieceInstance{}, false
	}
	return continuePlayhead(pi, in.NextPart, in.NextPartInstanceID), true
}

// adlibPlayheadPromotions admits at most one dynamically-inserted adlib
// per source layer for each of {OutOnRundownEnd, OutOnSegmentEnd,
// OutOnShowStyleEnd}, subject to the same activity gates as §4.F.2.
func adlibPlayheadPromotions(bySourceLayer map[string][]model.PieceInstance, in PlayheadTrackingInput) []model.PieceInstance {
	promotable := []model.PieceLifespan{
		model.LifespanOutOnRundownEnd,
		model.LifespanOutOnSegmentEnd,
		model.LifespanOutOnShowStyleEnd,
	}

	var out []model.PieceInstance
	for _, group := range bySourceLayer {
		seen := map[model.PieceLifespan]bool{}
		for _, pi := range group {
			if !pi.IsAdlib() {
				continue
			}
			if !containsLifespanPI(promotable, pi.Piece.Lifespan) || seen[pi.Piece.Lifespan] {
				continue
			}
			if !IsPotentiallyActive(pi.Piece, in.ActivationContext) {
				continue
			}
			promoted := continuePlayhead(pi, in.NextPart, in.NextPartInstanceID)
			out = append(out, promoted)
			seen[pi.Piece.Lifespan] = true // at most one per layer and lifespan
		}
	}
	return out
}

// continuePlayhead rebinds pi onto nextInstanceID the way a hold
// continuation rebinds onto its target part-instance (§4.H.3): a fresh
// "_continue" id, the new part-instance id, start rewritten to Offset(0).
func continuePlayhead(pi model.PieceInstance, nextPart model.Part, nextInstanceID ids.PartInstanceID) model.PieceInstance {
	out := pi
	out.ID = ids.PieceInstanceID(string(pi.ID) + "_continue")
	out.PartInstanceID = nextInstanceID
	out.Piece.Enable.Start = model.Offset(0)
	infinite := model.PieceInstanceInfinite{}
	if pi.Infinite != nil {
		infinite = *pi.Infinite
	}
	infinite.InfiniteInstanceIndex++
	infinite.FromPreviousPart = true
	infinite.FromPreviousPlayhead = true
	out.Infinite = &infinite
	return out
}

func containsLifespanPI(set []model.PieceLifespan, v model.PieceLifespan) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
