// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
)

// RundownPlaylist is the top-level ordered container of Rundowns
// representing a production, plus the playout state a take mutates
// (spec §3).
type RundownPlaylist struct {
	ID                ids.PlaylistID  `json:"_id"`
	RundownIDsInOrder []ids.RundownID `json:"rundownIdsInOrder"`

	ActivationID *ids.PlaylistActivationID `json:"activationId,omitempty"`
	Rehearsal    bool                      `json:"rehearsal"`
	HoldState    HoldState                 `json:"holdState"`

	CurrentPartInstanceID  *ids.PartInstanceID `json:"currentPartInstanceId,omitempty"`
	NextPartInstanceID     *ids.PartInstanceID `json:"nextPartInstanceId,omitempty"`
	PreviousPartInstanceID *ids.PartInstanceID `json:"previousPartInstanceId,omitempty"`

	NextSegmentID   *ids.SegmentID `json:"nextSegmentId,omitempty"`
	NextTimeOffset  *time.Duration `json:"nextTimeOffset,omitempty"`
	NextPartManual  bool           `json:"nextPartManual"`
	Loop            bool           `json:"loop"`
	StartedPlayback *time.Time     `json:"startedPlayback,omitempty"`
}

// IsActive reports whether the playlist has a live activation.
func (p RundownPlaylist) IsActive() bool {
	return p.ActivationID != nil
}
