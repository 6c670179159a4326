// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
)

// PieceInstanceInfinite records how an infinite PieceInstance continues a
// thread of an infinite piece across parts (spec §3, §4.F.3).
type PieceInstanceInfinite struct {
	InfiniteInstanceID    ids.PieceInstanceInfiniteID `json:"infiniteInstanceId"`
	InfiniteInstanceIndex int                         `json:"infiniteInstanceIndex"`
	InfinitePieceID       ids.PieceID                 `json:"infinitePieceId"`
	FromPreviousPart      bool                        `json:"fromPreviousPart"`
	FromPreviousPlayhead  bool                        `json:"fromPreviousPlayhead"`
	FromHold              bool                        `json:"fromHold"`
}

// PieceInstance is a playout occurrence of a Piece bound to a PartInstance
// (spec §3, GLOSSARY). Piece is an embedded snapshot, same rationale as
// PartInstance.Part.
type PieceInstance struct {
	ID                   ids.PieceInstanceID      `json:"_id"`
	RundownID            ids.RundownID            `json:"rundownId"`
	PartInstanceID       ids.PartInstanceID       `json:"partInstanceId"`
	PlaylistActivationID ids.PlaylistActivationID `json:"playlistActivationId"`

	Piece Piece `json:"piece"`

	Reset    bool `json:"reset"`
	Disabled bool `json:"disabled"`
	Hidden   bool `json:"hidden"`

	DynamicallyInserted *time.Time `json:"dynamicallyInserted,omitempty"`
	AdlibSourceID       *string    `json:"adlibSourceId,omitempty"`

	Infinite *PieceInstanceInfinite `json:"infinite,omitempty"`

	PlannedStartedPlayback  *time.Time `json:"plannedStartedPlayback,omitempty"`
	PlannedStoppedPlayback  *time.Time `json:"plannedStoppedPlayback,omitempty"`
	ReportedStartedPlayback *time.Time `json:"reportedStartedPlayback,omitempty"`
	ReportedStoppedPlayback *time.Time `json:"reportedStoppedPlayback,omitempty"`

	UserDuration *time.Duration `json:"userDuration,omitempty"`

	// ResolvedEndCap is computed by the infinite-pruning walk (spec
	// §4.F.4), not stored at ingest time.
	ResolvedEndCap ResolvedEndCap `json:"resolvedEndCap"`
}

// IsAdlib reports whether this piece-instance was inserted dynamically
// rather than ingested as part of the rundown (spec §4.F.3).
func (pi PieceInstance) IsAdlib() bool {
	return pi.AdlibSourceID != nil
}
