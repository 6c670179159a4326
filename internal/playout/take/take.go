// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package take implements the take state machine (spec §4.H): set_next_part,
// the playhead-tracking sync that keeps a pending next part-instance's
// continuations fresh, take_next_part's precondition chain and thirteen-step
// body, hold start/complete, orphan cleanup, and the on-take timings
// recalculation. Every step sequences its cache mutations the way §5
// requires: next-instance creation before playlist pointer update, so a
// cancelled flush never leaves the playlist pointing at an instance that
// was never written.
package take

import (
	"context"
	"fmt"
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/blueprint"
	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/config"
	playouterrors "github.com/sofie-broadcast/playout-core/internal/playout/errors"
	"github.com/sofie-broadcast/playout-core/internal/playout/idgen"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/infinites"
	"github.com/sofie-broadcast/playout-core/internal/playout/ingestqueue"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/selector"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// Scheduler bundles the take state machine's external collaborators (spec
// §6): the pieces collection and optional ingest overlay the infinite
// resolver reads, the ingest job queue and blueprint hooks orphan cleanup
// and take completion fire into, and the tunable debounce constants.
type Scheduler struct {
	Pieces store.Collection[model.Piece]
	Ingest infinites.IngestPieceSource
	Queue  ingestqueue.Queue
	Hooks  blueprint.Hooks
	Config config.Config
}

// New returns a Scheduler with Noop collaborators for anything left nil, so
// a caller that only cares about the core state machine doesn't have to
// wire an ingest overlay or blueprint host.
func New(pieces store.Collection[model.Piece], ingest infinites.IngestPieceSource, queue ingestqueue.Queue, hooks blueprint.Hooks, cfg config.Config) *Scheduler {
	if queue == nil {
		queue = ingestqueue.Noop{}
	}
	if hooks == nil {
		hooks = blueprint.Noop{}
	}
	return &Scheduler{Pieces: pieces, Ingest: ingest, Queue: queue, Hooks: hooks, Config: cfg}
}

// NextTarget is set_next_part's target_opt (spec §4.H.1): either a
// PartInstance already named as next (only its consumes_next_segment_id
// may need clearing), or a fresh selection to instantiate.
type NextTarget struct {
	ExistingPartInstanceID *ids.PartInstanceID
	Selected               *selector.Result
}

// SetNextPart implements §4.H.1.
func (s *Scheduler) SetNextPart(
	ctx context.Context,
	pc *cache.PlayoutCache,
	target *NextTarget,
	setManually bool,
	nextTimeOffset *time.Duration,
	now time.Time,
) error {
	playlist := pc.Playlist.Doc()

	if target == nil {
		_, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
			p.NextPartInstanceID = nil
			p.NextPartManual = setManually
			p.NextTimeOffset = nil
			return p, true
		})
		return err
	}

	if target.ExistingPartInstanceID != nil &&
		playlist.NextPartInstanceID != nil &&
		*target.ExistingPartInstanceID == *playlist.NextPartInstanceID {
		if _, err := pc.PartInstances.UpdateOne(target.ExistingPartInstanceID.Unprotect(), func(pi model.PartInstance) (model.PartInstance, bool) {
			if !pi.ConsumesNextSegmentID {
				return pi, false
			}
			pi.ConsumesNextSegmentID = false
			return pi, true
		}); err != nil {
			return err
		}
		return s.SyncPlayheadInfinites(pc, now)
	}

	if target.Selected == nil {
		return fmt.Errorf("take: NextTarget must name an existing instance or a selection")
	}

	part, ok := pc.Parts.FindOneByID(target.Selected.PartID.Unprotect())
	if !ok {
		return playouterrors.EntityNotFound("part", target.Selected.PartID.Unprotect())
	}
	if part.Invalid {
		return playouterrors.InvalidPart(part.ID.Unprotect())
	}
	if !containsString(pc.RundownIDs(), part.RundownID.Unprotect()) {
		return playouterrors.PartNotInPlaylist(part.ID.Unprotect(), part.RundownID.Unprotect())
	}

	current, hasCurrent := pc.CurrentPartInstance()
	previous, hasPrevious := pc.PreviousPartInstance()

	newID := ids.PartInstanceID(idgen.WithPrefix(part.ID.Unprotect()))

	takeCount := 0
	if hasCurrent {
		takeCount = current.TakeCount + 1
	}

	segmentPlayoutID := ids.SegmentPlayoutID(idgen.Fresh())
	if hasCurrent && current.SegmentID == part.SegmentID {
		segmentPlayoutID = current.SegmentPlayoutID
	}

	activationID := activationIDOf(playlist)

	newInstance := model.PartInstance{
		ID:                    newID,
		RundownID:             part.RundownID,
		SegmentID:             part.SegmentID,
		PlaylistActivationID:  activationID,
		SegmentPlayoutID:      segmentPlayoutID,
		Part:                  part,
		TakeCount:             takeCount,
		Timings:               model.PartInstanceTimings{SetAsNext: now},
		ConsumesNextSegmentID: target.Selected.ConsumesNextSegmentID,
	}
	if err := pc.PartInstances.Insert(newInstance); err != nil {
		return err
	}

	candidates, err := infinites.FetchCandidates(ctx, s.Pieces, pc, s.Ingest, part)
	if err != nil {
		return err
	}

	activationCtx := s.activationContextFor(pc, part, hasCurrent || hasPrevious, true)
	winners := infinites.SelectWinners(candidates, activationCtx)

	var playing []model.PieceInstance
	if hasCurrent {
		playing = pc.PieceInstances.FindSome(func(pi model.PieceInstance) bool {
			return pi.PartInstanceID == current.ID
		})
	}
	for _, pi := range infinites.WrapToPieceInstances(winners, part, newID, part.RundownID, activationID, playing) {
		if err := pc.PieceInstances.Insert(pi); err != nil {
			return err
		}
	}

	selected := map[string]struct{}{newID.Unprotect(): {}}
	if hasCurrent {
		selected[current.ID.Unprotect()] = struct{}{}
	}
	if hasPrevious {
		selected[previous.ID.Unprotect()] = struct{}{}
	}

	var sameParSiblings []string
	for _, pi := range pc.PartInstances.FindAll() {
		if pi.Part.ID != part.ID || pi.Reset {
			continue
		}
		if _, keep := selected[pi.ID.Unprotect()]; keep {
			continue
		}
		sameParSiblings = append(sameParSiblings, pi.ID.Unprotect())
	}
	if err := resetPartInstances(pc, sameParSiblings); err != nil {
		return err
	}

	if _, err := pc.Playlist.Update(func(p model.RundownPlaylist) (model.RundownPlaylist, bool) {
		p.NextPartInstanceID = &newID
		p.NextPartManual = setManually
		p.NextTimeOffset = nextTimeOffset
		return p, true
	}); err != nil {
		return err
	}

	var orphaned []string
	for _, pi := range pc.PartInstances.FindAll() {
		if pi.IsTaken {
			continue
		}
		if _, keep := selected[pi.ID.Unprotect()]; keep {
			continue
		}
		orphaned = append(orphaned, pi.ID.Unprotect())
	}
	for _, id := range orphaned {
		if _, err := pc.PartInstances.RemoveByID(id); err != nil {
			return err
		}
		if _, err := pc.PieceInstances.RemoveByFilter(func(pi model.PieceInstance) bool {
			return pi.PartInstanceID.Unprotect() == id
		}); err != nil {
			return err
		}
	}

	if hasCurrent && part.SegmentID != current.SegmentID {
		var trailing []string
		for _, pi := range pc.PartInstances.FindAll() {
			if pi.ID == current.ID || pi.ID == newID {
				continue
			}
			if pi.SegmentID == current.SegmentID || pi.SegmentID == part.SegmentID {
				trailing = append(trailing, pi.ID.Unprotect())
			}
		}
		if err := resetPartInstances(pc, trailing); err != nil {
			return err
		}
	}

	return s.CleanupOrphanedItems(ctx, pc)
}

// SyncPlayheadInfinites implements §4.H.4.
func (s *Scheduler) SyncPlayheadInfinites(pc *cache.PlayoutCache, now time.Time) error {
	current, hasCurrent := pc.CurrentPartInstance()
	next, hasNext := pc.NextPartInstance()
	if !hasCurrent || !hasNext || !pc.Playlist.Doc().IsActive() {
		return nil
	}

	var nowInPart time.Duration
	if current.Timings.PlannedStartedPlayback != nil {
		nowInPart = now.Sub(*current.Timings.PlannedStartedPlayback)
	}

	playing := pc.PieceInstances.FindSome(func(pi model.PieceInstance) bool {
		return pi.PartInstanceID == current.ID
	})
	pruned := infinites.ProcessAndPrune(playing, nowInPart, false, false)

	activationCtx := s.activationContextFor(pc, next.Part, true, true)
	tracked := infinites.PlayheadTrackingInfinites(pruned, infinites.PlayheadTrackingInput{
		CurrentInstance:    current,
		NextPart:           next.Part,
		NextPartInstanceID: next.ID,
		NextIsAfterCurrent: true,
		ActivationContext:  activationCtx,
	})

	_, err := pc.PieceInstances.SaveInto(func(pi model.PieceInstance) bool {
		return pi.PartInstanceID == next.ID && pi.Infinite != nil && pi.Infinite.FromPreviousPlayhead
	}, tracked)
	return err
}

func (s *Scheduler) activationContextFor(pc *cache.PlayoutCache, part model.Part, hasPreviousPartInstance, continueShowStyleEnd bool) infinites.ActivationContext {
	ordered := pc.OrderedSegmentsAndParts()
	orderedPartIDs := make([]ids.PartID, len(ordered.Parts))
	for i, p := range ordered.Parts {
		orderedPartIDs[i] = p.ID
	}
	return infinites.ActivationContext{
		Part:                    part,
		HasPreviousPartInstance: hasPreviousPartInstance,
		ContinueShowStyleEnd:    continueShowStyleEnd,
		PartsBeforeInSegment:    infinites.PartsBeforeInSegment(pc, ordered, part),
		SegmentsBeforeInRundown: infinites.SegmentsBeforeInRundown(ordered, part),
		OrderedPartIDs:          orderedPartIDs,
	}
}

func activationIDOf(playlist model.RundownPlaylist) ids.PlaylistActivationID {
	if playlist.ActivationID == nil {
		return ""
	}
	return *playlist.ActivationID
}

// resetPartInstances implements reset_part_instances_with_piece_instances:
// mark every named part-instance and its piece-instances reset=true.
func resetPartInstances(pc *cache.PlayoutCache, partInstanceIDs []string) error {
	if len(partInstanceIDs) == 0 {
		return nil
	}
	targets := make(map[string]struct{}, len(partInstanceIDs))
	for _, id := range partInstanceIDs {
		targets[id] = struct{}{}
	}

	if _, err := pc.PartInstances.UpdateAll(func(pi model.PartInstance) (model.PartInstance, bool) {
		if _, ok := targets[pi.ID.Unprotect()]; !ok || pi.Reset {
			return pi, false
		}
		pi.Reset = true
		return pi, true
	}); err != nil {
		return err
	}

	_, err := pc.PieceInstances.UpdateAll(func(pi model.PieceInstance) (model.PieceInstance, bool) {
		if _, ok := targets[pi.PartInstanceID.Unprotect()]; !ok || pi.Reset {
			return pi, false
		}
		pi.Reset = true
		return pi, true
	})
	return err
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
