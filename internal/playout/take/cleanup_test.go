// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofie-broadcast/playout-core/internal/playout/blueprint"
	"github.com/sofie-broadcast/playout-core/internal/playout/config"
	"github.com/sofie-broadcast/playout-core/internal/playout/ingestqueue"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

type recordingQueue struct {
	jobs []ingestqueue.RemoveOrphanedSegmentsJob
}

func (q *recordingQueue) EnqueueRemoveOrphanedSegments(_ context.Context, job ingestqueue.RemoveOrphanedSegmentsJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestCleanupOrphanedItemsEnqueuesDeletedAndHiddenSegments(t *testing.T) {
	playlist := model.RundownPlaylist{ID: "pl1", CurrentPartInstanceID: partInstanceIDPtr("keep-inst")}
	rundowns := []model.Rundown{{ID: "rd1", ExternalID: "ext-rd1"}}
	segments := []model.Segment{
		{ID: "seg-deleted", RundownID: "rd1", Orphaned: model.SegmentOrphanedDeleted},
		{ID: "seg-hidden", RundownID: "rd1", Orphaned: model.SegmentOrphanedHidden},
		{ID: "seg-live", RundownID: "rd1"},
	}
	partInstances := []model.PartInstance{
		{ID: "keep-inst", RundownID: "rd1", SegmentID: "seg-live"},
	}
	pc := testCache(playlist, rundowns, segments, nil, partInstances, nil)

	queue := &recordingQueue{}
	s := New(newFakePieceStore(), nil, queue, blueprint.Noop{}, config.Default())

	require.NoError(t, s.CleanupOrphanedItems(context.Background(), pc))
	require.Len(t, queue.jobs, 1)
	require.Equal(t, "ext-rd1", queue.jobs[0].RundownExternalID)
	require.ElementsMatch(t, []string{"seg-deleted"}, queue.jobs[0].OrphanedDeletedSegmentIDs)
	require.ElementsMatch(t, []string{"seg-hidden"}, queue.jobs[0].OrphanedHiddenSegmentIDs)
}

func TestCleanupOrphanedItemsSkipsSegmentsHoldingCurrentOrNext(t *testing.T) {
	playlist := model.RundownPlaylist{
		ID:                    "pl1",
		CurrentPartInstanceID: partInstanceIDPtr("cur"),
		NextPartInstanceID:    partInstanceIDPtr("next"),
	}
	segments := []model.Segment{
		{ID: "seg-cur", RundownID: "rd1", Orphaned: model.SegmentOrphanedDeleted},
		{ID: "seg-next", RundownID: "rd1", Orphaned: model.SegmentOrphanedHidden},
	}
	partInstances := []model.PartInstance{
		{ID: "cur", RundownID: "rd1", SegmentID: "seg-cur"},
		{ID: "next", RundownID: "rd1", SegmentID: "seg-next"},
	}
	pc := testCache(playlist, []model.Rundown{{ID: "rd1"}}, segments, nil, partInstances, nil)

	queue := &recordingQueue{}
	s := New(newFakePieceStore(), nil, queue, blueprint.Noop{}, config.Default())

	require.NoError(t, s.CleanupOrphanedItems(context.Background(), pc))
	require.Empty(t, queue.jobs)
}

func TestCleanupOrphanedItemsResetsDeletedPartInstancesExceptPreserved(t *testing.T) {
	playlist := model.RundownPlaylist{ID: "pl1"}
	segments := []model.Segment{{ID: "seg-live", RundownID: "rd1"}, {ID: "seg-orphan", RundownID: "rd1", Orphaned: model.SegmentOrphanedDeleted}}
	partInstances := []model.PartInstance{
		{ID: "deleted-live-segment", RundownID: "rd1", SegmentID: "seg-live", Orphaned: model.PartInstanceOrphanedDeleted},
		{ID: "deleted-orphan-segment", RundownID: "rd1", SegmentID: "seg-orphan", Orphaned: model.PartInstanceOrphanedDeleted},
	}
	pc := testCache(playlist, []model.Rundown{{ID: "rd1"}}, segments, nil, partInstances, nil)

	cfg := config.Default()
	cfg.PreserveUnsyncedPlayingSegmentContents = true
	s := New(newFakePieceStore(), nil, &recordingQueue{}, blueprint.Noop{}, cfg)

	require.NoError(t, s.CleanupOrphanedItems(context.Background(), pc))

	resetOne, ok := pc.PartInstances.FindOneByID("deleted-live-segment")
	require.True(t, ok)
	require.True(t, resetOne.Reset, "part-instance in a live segment resets normally")

	preserved, ok := pc.PartInstances.FindOneByID("deleted-orphan-segment")
	require.True(t, ok)
	require.False(t, preserved.Reset, "PreserveUnsyncedPlayingSegmentContents keeps an orphaned segment's part-instances untouched")
}

func TestCleanupOrphanedItemsResetsEvenOrphanSegmentWhenNotPreserving(t *testing.T) {
	playlist := model.RundownPlaylist{ID: "pl1"}
	segments := []model.Segment{{ID: "seg-orphan", RundownID: "rd1", Orphaned: model.SegmentOrphanedDeleted}}
	partInstances := []model.PartInstance{
		{ID: "deleted-orphan-segment", RundownID: "rd1", SegmentID: "seg-orphan", Orphaned: model.PartInstanceOrphanedDeleted},
	}
	pc := testCache(playlist, []model.Rundown{{ID: "rd1"}}, segments, nil, partInstances, nil)

	cfg := config.Default()
	cfg.PreserveUnsyncedPlayingSegmentContents = false
	s := New(newFakePieceStore(), nil, &recordingQueue{}, blueprint.Noop{}, cfg)

	require.NoError(t, s.CleanupOrphanedItems(context.Background(), pc))

	pi, ok := pc.PartInstances.FindOneByID("deleted-orphan-segment")
	require.True(t, ok)
	require.True(t, pi.Reset)
}
