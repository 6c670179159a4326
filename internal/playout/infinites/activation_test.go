// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package infinites

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

func TestIsPotentiallyActiveOutOnSegmentEnd(t *testing.T) {
	ctx := ActivationContext{
		Part:                 model.Part{ID: "p3", SegmentID: "s1"},
		PartsBeforeInSegment: []ids.PartID{"p1", "p2"},
	}
	active := model.Piece{Lifespan: model.LifespanOutOnSegmentEnd, StartSegmentID: "s1", StartPartID: "p1"}
	require.True(t, IsPotentiallyActive(active, ctx))

	wrongSegment := active
	wrongSegment.StartSegmentID = "other"
	require.False(t, IsPotentiallyActive(wrongSegment, ctx))

	laterPart := active
	laterPart.StartPartID = "p3"
	require.False(t, IsPotentiallyActive(laterPart, ctx))
}

func TestIsPotentiallyActiveOutOnRundownEnd(t *testing.T) {
	ctx := ActivationContext{
		Part:                    model.Part{ID: "p3", SegmentID: "s2", RundownID: "r1"},
		PartsBeforeInSegment:    []ids.PartID{"p2"},
		SegmentsBeforeInRundown: []ids.SegmentID{"s1"},
	}
	sameSegment := model.Piece{Lifespan: model.LifespanOutOnRundownEnd, StartRundownID: "r1", StartSegmentID: "s2", StartPartID: "p2"}
	require.True(t, IsPotentiallyActive(sameSegment, ctx))

	earlierSegment := model.Piece{Lifespan: model.LifespanOutOnRundownEnd, StartRundownID: "r1", StartSegmentID: "s1"}
	require.True(t, IsPotentiallyActive(earlierSegment, ctx))

	wrongRundown := earlierSegment
	wrongRundown.StartRundownID = "other"
	require.False(t, IsPotentiallyActive(wrongRundown, ctx))
}

func TestIsPotentiallyActiveOutOnShowStyleEnd(t *testing.T) {
	p := model.Piece{Lifespan: model.LifespanOutOnShowStyleEnd}
	require.True(t, IsPotentiallyActive(p, ActivationContext{HasPreviousPartInstance: true, ContinueShowStyleEnd: true}))
	require.False(t, IsPotentiallyActive(p, ActivationContext{HasPreviousPartInstance: true, ContinueShowStyleEnd: false}))
	require.False(t, IsPotentiallyActive(p, ActivationContext{HasPreviousPartInstance: false, ContinueShowStyleEnd: true}))
}

func TestIsPotentiallyActiveWithinPartOnlyWhenNoPrevious(t *testing.T) {
	p := model.Piece{Lifespan: model.LifespanWithinPart}
	require.True(t, IsPotentiallyActive(p, ActivationContext{HasPreviousPartInstance: false}))
	require.False(t, IsPotentiallyActive(p, ActivationContext{HasPreviousPartInstance: true}))
}

func TestSelectWinnersPassesOwnPartPiecesThrough(t *testing.T) {
	ctx := ActivationContext{Part: model.Part{ID: "p1"}}
	own := model.Piece{ID: "pc1", StartPartID: "p1", Lifespan: model.LifespanWithinPart}
	out := SelectWinners([]model.Piece{own}, ctx)
	require.Equal(t, []model.Piece{own}, out)
}

func TestSelectWinnersPicksLatestPerLayer(t *testing.T) {
	ctx := ActivationContext{
		Part:                 model.Part{ID: "p3", SegmentID: "s1"},
		PartsBeforeInSegment: []ids.PartID{"p1", "p2"},
		OrderedPartIDs:       []ids.PartID{"p1", "p2", "p3"},
	}
	earlier := model.Piece{ID: "a", SourceLayerID: "cam", Lifespan: model.LifespanOutOnSegmentEnd, StartSegmentID: "s1", StartPartID: "p1"}
	later := model.Piece{ID: "b", SourceLayerID: "cam", Lifespan: model.LifespanOutOnSegmentEnd, StartSegmentID: "s1", StartPartID: "p2"}

	out := SelectWinners([]model.Piece{earlier, later}, ctx)
	require.Len(t, out, 1)
	require.Equal(t, ids.PieceID("b"), out[0].ID)
}

func TestSelectWinnersDropsInactiveCandidate(t *testing.T) {
	ctx := ActivationContext{
		Part:                 model.Part{ID: "p3", SegmentID: "s1"},
		PartsBeforeInSegment: []ids.PartID{"p1"},
	}
	fromLaterPart := model.Piece{ID: "a", SourceLayerID: "cam", Lifespan: model.LifespanOutOnSegmentEnd, StartSegmentID: "s1", StartPartID: "p3"}
	out := SelectWinners([]model.Piece{fromLaterPart}, ctx)
	require.Empty(t, out)
}

func TestIsLaterSamePartPrefersNowThenLargerOffset(t *testing.T) {
	base := model.Piece{StartPartID: "p1"}
	now := base
	now.Enable.Start = model.Now()
	offsetSmall := base
	offsetSmall.Enable.Start = model.Offset(10)
	offsetLarge := base
	offsetLarge.Enable.Start = model.Offset(20)

	require.True(t, isLater(now, offsetLarge, nil))
	require.True(t, isLater(offsetLarge, offsetSmall, nil))
	require.False(t, isLater(offsetSmall, offsetLarge, nil))
}

func TestIsLaterDifferentPartUsesOrderedIndex(t *testing.T) {
	order := []ids.PartID{"p1", "p2", "p3"}
	a := model.Piece{StartPartID: "p3"}
	b := model.Piece{StartPartID: "p1"}
	require.True(t, isLater(a, b, order))
	require.False(t, isLater(b, a, order))
}

func TestIsLaterUnknownPartLoses(t *testing.T) {
	order := []ids.PartID{"p1"}
	known := model.Piece{StartPartID: "p1"}
	unknown := model.Piece{StartPartID: "ghost"}
	require.True(t, isLater(known, unknown, order))
	require.False(t, isLater(unknown, known, order))
}
