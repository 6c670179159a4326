// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"context"

	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/ingestqueue"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// CleanupOrphanedItems implements §4.H.5. Segment orphan cleanup treats
// Hidden the same as Deleted for enqueueing a reingest job (spec §9 open
// question, resolved that way here). Part-instance reset is gated by
// Config.PreserveUnsyncedPlayingSegmentContents: true means a part-instance
// whose segment is itself orphaned is left alone rather than reset, so an
// operator can keep riding out unsynced content until the segment catches
// up with ingest.
func (s *Scheduler) CleanupOrphanedItems(ctx context.Context, pc *cache.PlayoutCache) error {
	playlist := pc.Playlist.Doc()

	currentSegmentID, hasCurrentSegment := segmentOf(pc, playlist.CurrentPartInstanceID)
	nextSegmentID, hasNextSegment := segmentOf(pc, playlist.NextPartInstanceID)

	jobsByRundown := map[ids.RundownID]*ingestqueue.RemoveOrphanedSegmentsJob{}
	for _, seg := range pc.Segments.FindAll() {
		if seg.Orphaned != model.SegmentOrphanedDeleted && seg.Orphaned != model.SegmentOrphanedHidden {
			continue
		}
		if hasCurrentSegment && seg.ID == currentSegmentID {
			continue
		}
		if hasNextSegment && seg.ID == nextSegmentID {
			continue
		}

		job, ok := jobsByRundown[seg.RundownID]
		if !ok {
			job = &ingestqueue.RemoveOrphanedSegmentsJob{}
			jobsByRundown[seg.RundownID] = job
		}
		switch seg.Orphaned {
		case model.SegmentOrphanedHidden:
			job.OrphanedHiddenSegmentIDs = append(job.OrphanedHiddenSegmentIDs, seg.ID.Unprotect())
		case model.SegmentOrphanedDeleted:
			job.OrphanedDeletedSegmentIDs = append(job.OrphanedDeletedSegmentIDs, seg.ID.Unprotect())
		}
	}
	for rundownID, job := range jobsByRundown {
		if rd, ok := pc.Rundowns.FindOneByID(rundownID.Unprotect()); ok {
			job.RundownExternalID = rd.ExternalID
		}
		if err := s.Queue.EnqueueRemoveOrphanedSegments(ctx, *job); err != nil {
			return err
		}
	}

	var toReset []string
	for _, pi := range pc.PartInstances.FindAll() {
		if pi.Orphaned != model.PartInstanceOrphanedDeleted || pi.Reset {
			continue
		}
		if playlist.CurrentPartInstanceID != nil && pi.ID == *playlist.CurrentPartInstanceID {
			continue
		}
		if playlist.NextPartInstanceID != nil && pi.ID == *playlist.NextPartInstanceID {
			continue
		}
		if seg, ok := pc.Segments.FindOneByID(pi.SegmentID.Unprotect()); ok && seg.Orphaned != model.SegmentOrphanedNone {
			if s.Config.PreserveUnsyncedPlayingSegmentContents {
				continue
			}
		}
		toReset = append(toReset, pi.ID.Unprotect())
	}

	return resetPartInstances(pc, toReset)
}

func segmentOf(pc *cache.PlayoutCache, partInstanceID *ids.PartInstanceID) (ids.SegmentID, bool) {
	if partInstanceID == nil {
		return "", false
	}
	pi, ok := pc.PartInstances.FindOneByID(partInstanceID.Unprotect())
	if !ok {
		return "", false
	}
	return pi.SegmentID, true
}
