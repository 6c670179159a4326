// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package infinites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

func mkPI(id, layer string, lifespan model.PieceLifespan, start model.PieceEnableStart) model.PieceInstance {
	return model.PieceInstance{
		ID: ids.PieceInstanceID(id),
		Piece: model.Piece{
			ID:            ids.PieceID(id),
			SourceLayerID: layer,
			Lifespan:      lifespan,
			Enable:        model.PieceEnable{Start: start},
		},
	}
}

func TestProcessAndPruneCapsEarlierPieceOnSameRow(t *testing.T) {
	first := mkPI("a", "cam", model.LifespanOutOnSegmentEnd, model.Offset(0))
	second := mkPI("b", "cam", model.LifespanOutOnSegmentEnd, model.Offset(10*time.Second))

	out := ProcessAndPrune([]model.PieceInstance{first, second}, 0, false, true)
	require.Len(t, out, 2)

	byID := map[string]model.PieceInstance{}
	for _, pi := range out {
		byID[string(pi.ID)] = pi
	}
	require.Equal(t, model.EndCapAbsolute, byID["a"].ResolvedEndCap.Kind)
	require.Equal(t, 10*time.Second, byID["a"].ResolvedEndCap.Absolute)
	require.Equal(t, model.EndCapNone, byID["b"].ResolvedEndCap.Kind)
}

func TestProcessAndPruneIndependentLayersDoNotInteract(t *testing.T) {
	camA := mkPI("a", "cam", model.LifespanOutOnSegmentEnd, model.Offset(0))
	micB := mkPI("b", "mic", model.LifespanOutOnSegmentEnd, model.Offset(5*time.Second))

	out := ProcessAndPrune([]model.PieceInstance{camA, micB}, 0, false, true)
	require.Len(t, out, 2)
	for _, pi := range out {
		require.Equal(t, model.EndCapNone, pi.ResolvedEndCap.Kind)
	}
}

func TestProcessAndPruneOtherRowCappedByInfiniteArrival(t *testing.T) {
	within := mkPI("a", "cam", model.LifespanWithinPart, model.Offset(0))
	infinite := mkPI("b", "cam", model.LifespanOutOnSegmentEnd, model.Offset(8*time.Second))

	out := ProcessAndPrune([]model.PieceInstance{within, infinite}, 0, false, true)
	byID := map[string]model.PieceInstance{}
	for _, pi := range out {
		byID[string(pi.ID)] = pi
	}
	require.Equal(t, model.EndCapAbsolute, byID["a"].ResolvedEndCap.Kind)
	require.Equal(t, 8*time.Second, byID["a"].ResolvedEndCap.Absolute)
}

func TestProcessAndPruneOtherRowNotCappedWhenPreferableAtZero(t *testing.T) {
	dyn := time.Now()
	preferred := mkPI("a", "cam", model.LifespanWithinPart, model.Offset(0))
	preferred.DynamicallyInserted = &dyn
	zeroStartInfinite := mkPI("b", "cam", model.LifespanOutOnSegmentEnd, model.Offset(0))

	out := ProcessAndPrune([]model.PieceInstance{preferred, zeroStartInfinite}, 0, false, true)
	byID := map[string]model.PieceInstance{}
	for _, pi := range out {
		byID[string(pi.ID)] = pi
	}
	require.Equal(t, model.EndCapNone, byID["a"].ResolvedEndCap.Kind)
}

func TestProcessAndPruneDropsDisabledUnlessKept(t *testing.T) {
	disabled := mkPI("a", "cam", model.LifespanWithinPart, model.Offset(0))
	disabled.Disabled = true

	require.Empty(t, ProcessAndPrune([]model.PieceInstance{disabled}, 0, false, true))
	require.Len(t, ProcessAndPrune([]model.PieceInstance{disabled}, 0, true, true), 1)
}

func TestProcessAndPruneStripsVirtualEndCapsUnlessIncluded(t *testing.T) {
	virtualInfinite := mkPI("a", "cam", model.LifespanOutOnSegmentEnd, model.Offset(0))
	virtualInfinite.Piece.Virtual = true
	next := mkPI("b", "cam", model.LifespanOutOnSegmentEnd, model.Offset(5*time.Second))

	withVirtual := ProcessAndPrune([]model.PieceInstance{virtualInfinite, next}, 0, false, true)
	require.Len(t, withVirtual, 2)

	withoutVirtual := ProcessAndPrune([]model.PieceInstance{virtualInfinite, next}, 0, false, false)
	require.Len(t, withoutVirtual, 1)
	require.Equal(t, "b", string(withoutVirtual[0].ID))
}

func TestProcessAndPruneUsesNowInPartForNowStart(t *testing.T) {
	nowPiece := mkPI("a", "cam", model.LifespanOutOnSegmentEnd, model.Now())
	later := mkPI("b", "cam", model.LifespanOutOnSegmentEnd, model.Offset(3*time.Second))

	out := ProcessAndPrune([]model.PieceInstance{nowPiece, later}, time.Second, false, true)
	byID := map[string]model.PieceInstance{}
	for _, pi := range out {
		byID[string(pi.ID)] = pi
	}
	require.Equal(t, model.EndCapAbsolute, byID["a"].ResolvedEndCap.Kind)
	require.Equal(t, 3*time.Second, byID["a"].ResolvedEndCap.Absolute)
}

func TestIsCandidateBetterToBeContinuedPrefersSamePart(t *testing.T) {
	samePart := model.PieceInstance{}
	fromPrevious := model.PieceInstance{Infinite: &model.PieceInstanceInfinite{FromPreviousPart: true}}
	require.True(t, isCandidateBetterToBeContinued(samePart, fromPrevious))
	require.False(t, isCandidateBetterToBeContinued(fromPrevious, samePart))
}

func TestIsCandidateBetterToBeContinuedPrefersLaterDynamicInsert(t *testing.T) {
	earlier := time.Now()
	later := earlier.Add(time.Minute)
	a := model.PieceInstance{DynamicallyInserted: &later}
	b := model.PieceInstance{DynamicallyInserted: &earlier}
	require.True(t, isCandidateBetterToBeContinued(a, b))
}

func TestIsCandidateBetterToBeContinuedFallsBackToLowerID(t *testing.T) {
	a := model.PieceInstance{Piece: model.Piece{ID: "a"}}
	b := model.PieceInstance{Piece: model.Piece{ID: "b"}}
	require.True(t, isCandidateBetterToBeContinued(a, b))
	require.False(t, isCandidateBetterToBeContinued(b, a))
}
