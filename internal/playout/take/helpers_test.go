// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package take

import (
	"context"

	"github.com/sofie-broadcast/playout-core/internal/playout/cache"
	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
	"github.com/sofie-broadcast/playout-core/internal/playout/store"
)

// fakePieceStore is a minimal in-memory store.Collection[model.Piece] for
// exercising FetchCandidates without a real backing store.
type fakePieceStore struct {
	byID map[string]model.Piece
}

func newFakePieceStore(pieces ...model.Piece) *fakePieceStore {
	s := &fakePieceStore{byID: map[string]model.Piece{}}
	for _, p := range pieces {
		s.byID[p.DocID()] = p
	}
	return s
}

func (s *fakePieceStore) FindByID(_ context.Context, id string) (model.Piece, bool, error) {
	p, ok := s.byID[id]
	return p, ok, nil
}

func (s *fakePieceStore) FindOne(_ context.Context, _ store.Query) (model.Piece, bool, error) {
	return model.Piece{}, false, nil
}

func (s *fakePieceStore) FindByQuery(_ context.Context, q store.Query) ([]model.Piece, error) {
	var out []model.Piece
	for _, p := range s.byID {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePieceStore) FindByIDs(_ context.Context, ids []string) ([]model.Piece, error) {
	var out []model.Piece
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePieceStore) ReplaceOne(_ context.Context, id string, doc model.Piece, _ bool) error {
	s.byID[id] = doc
	return nil
}

func (s *fakePieceStore) DeleteMany(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(s.byID, id)
	}
	return nil
}

// matchesQuery interprets the small subset of store.Query FetchCandidates
// actually issues against a Piece: equality/$in on its Start*ID and
// Lifespan fields, possibly under a top-level $or.
func matchesQuery(p model.Piece, q store.Query) bool {
	if len(q.Or) > 0 {
		for _, sub := range q.Or {
			if matchesQuery(p, sub) {
				return true
			}
		}
		return false
	}
	for field, values := range q.In {
		var actual string
		switch field {
		case "startPartId":
			actual = p.StartPartID.Unprotect()
		case "startSegmentId":
			actual = p.StartSegmentID.Unprotect()
		case "startRundownId":
			actual = p.StartRundownID.Unprotect()
		case "lifespan":
			actual = string(p.Lifespan)
		default:
			return false
		}
		found := false
		for _, v := range values {
			if s, ok := v.(string); ok && s == actual {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for field, value := range q.Eq {
		switch field {
		case "startPartId":
			if p.StartPartID.Unprotect() != value {
				return false
			}
		case "startSegmentId":
			if p.StartSegmentID.Unprotect() != value {
				return false
			}
		case "invalid":
			if p.Invalid != value {
				return false
			}
		}
	}
	for field, value := range q.Ne {
		if field == "startPartId" && p.StartPartID.Unprotect() == value {
			return false
		}
	}
	return true
}

// testCache assembles a PlayoutCache directly from fixtures, bypassing
// cache.Load's store round-trip.
func testCache(
	playlist model.RundownPlaylist,
	rundowns []model.Rundown,
	segments []model.Segment,
	parts []model.Part,
	partInstances []model.PartInstance,
	pieceInstances []model.PieceInstance,
) *cache.PlayoutCache {
	return &cache.PlayoutCache{
		Playlist:       cache.FromDocument("rundownPlaylist", playlist),
		Rundowns:       cache.FromDocuments("rundowns", rundowns),
		Segments:       cache.FromDocuments("segments", segments),
		Parts:          cache.FromDocuments("parts", parts),
		PartInstances:  cache.FromDocuments("partInstances", partInstances),
		PieceInstances: cache.FromDocuments("pieceInstances", pieceInstances),
	}
}

func partInstanceIDPtr(id ids.PartInstanceID) *ids.PartInstanceID { return &id }
