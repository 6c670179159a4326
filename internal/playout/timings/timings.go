// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package timings implements the pure part-timings calculator (spec §4.G):
// given the part being left and the part being taken, work out the
// preroll/postroll/transition offsets the take state machine needs to
// schedule the actual switch.
package timings

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// Calculate computes a PartCalculatedTimings for a transition from
// fromPart/fromPieces (nil/nil if there is no current part) to
// toPart/toPieces.
func Calculate(
	holdState model.HoldState,
	fromPart *model.Part,
	fromPieces []model.Piece,
	toPart model.Part,
	toPieces []model.Piece,
) model.PartCalculatedTimings {
	toPartPreroll := maxPreroll(toPieces)
	fromPartPostroll := maxPostroll(fromPieces)
	toPartPostroll := maxPostroll(toPieces)

	var inTransition *model.PartInTransition
	allowTransitionPiece := false

	holdBlocksTransition := holdState == model.HoldPending || holdState == model.HoldActive

	switch {
	case holdBlocksTransition:
		// inTransition stays nil; no transition piece.
	case fromPart != nil && fromPart.Autonext:
		overlap := time.Duration(0)
		if fromPart.AutonextOverlap != nil {
			overlap = *fromPart.AutonextOverlap
		}
		inTransition = &model.PartInTransition{
			BlockTakeDuration:            0,
			PreviousPartKeepaliveDuration: overlap,
			PartContentDelayDuration:     0,
		}
		allowTransitionPiece = false
	case fromPart != nil && !toPart.DisableNextInTransition:
		inTransition = toPart.InTransition
		allowTransitionPiece = true
	}

	var takeOffset time.Duration
	if inTransition == nil {
		outDuration := time.Duration(0)
		if fromPart != nil && fromPart.OutTransition != nil {
			outDuration = fromPart.OutTransition.Duration
		}
		takeOffset = maxDuration(0, maxDuration(outDuration, toPartPreroll))
	} else {
		outDuration := time.Duration(0)
		if fromPart != nil && fromPart.OutTransition != nil {
			outDuration = fromPart.OutTransition.Duration
		}
		outTransitionTime := outDuration - inTransition.PreviousPartKeepaliveDuration
		prerollTime := toPartPreroll - inTransition.PartContentDelayDuration
		takeOffset = maxDuration(0, maxDuration(outTransitionTime, prerollTime))
	}

	result := model.PartCalculatedTimings{
		ToPartPostroll:   toPartPostroll,
		FromPartPostroll: fromPartPostroll,
	}

	if allowTransitionPiece {
		start := takeOffset
		result.InTransitionStart = &start
	}

	result.ToPartDelay = takeOffset
	if inTransition != nil {
		result.ToPartDelay += inTransition.PartContentDelayDuration
	}

	result.FromPartRemaining = takeOffset + fromPartPostroll
	if inTransition != nil {
		result.FromPartRemaining += inTransition.PreviousPartKeepaliveDuration
	}

	return result
}

func maxPreroll(pieces []model.Piece) time.Duration {
	var best time.Duration
	for _, p := range pieces {
		if p.PieceType != model.PieceTypeNormal {
			continue
		}
		if p.Enable.Start.IsNow {
			continue
		}
		v := p.PrerollDuration - p.Enable.Start.Offset
		if v > best {
			best = v
		}
	}
	return best
}

func maxPostroll(pieces []model.Piece) time.Duration {
	var best time.Duration
	for _, p := range pieces {
		if p.Enable.Duration != nil {
			continue
		}
		if p.PostrollDuration > best {
			best = p.PostrollDuration
		}
	}
	return best
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
