// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"time"

	"github.com/sofie-broadcast/playout-core/internal/playout/ids"
)

// PartInTransition describes the blended handoff into a Part (spec §3).
type PartInTransition struct {
	// BlockTakeDuration is how long this transition blocks a subsequent
	// take; after it elapses another take is allowed and may cut the
	// transition off early (§4.H.2).
	BlockTakeDuration time.Duration `json:"blockTakeDuration"`
	// PreviousPartKeepaliveDuration is how long the previous part keeps
	// playing once the transition starts.
	PreviousPartKeepaliveDuration time.Duration `json:"previousPartKeepaliveDuration"`
	// PartContentDelayDuration is how long this part's own pieces are
	// delayed once the transition starts.
	PartContentDelayDuration time.Duration `json:"partContentDelayDuration"`
}

// PartOutTransition describes how long a Part is kept alive after being
// taken out (spec §3).
type PartOutTransition struct {
	Duration time.Duration `json:"duration"`
}

// Part is the static, ingest-owned content unit an operator takes (spec §3).
// Parts/Segments/Rundowns are read-only from the playout core's point of
// view; it observes but never mutates their identity (spec §3 Lifecycles).
type Part struct {
	ID        ids.PartID    `json:"_id"`
	Rank      float64       `json:"rank"`
	RundownID ids.RundownID `json:"rundownId"`
	SegmentID ids.SegmentID `json:"segmentId"`

	Invalid  bool `json:"invalid"`
	Floated  bool `json:"floated"`
	Untimed  bool `json:"untimed"`
	Autonext bool `json:"autonext"`
	// AutonextOverlap is only meaningful when Autonext is true.
	AutonextOverlap *time.Duration `json:"autonextOverlap,omitempty"`

	InTransition            *PartInTransition  `json:"inTransition,omitempty"`
	OutTransition           *PartOutTransition `json:"outTransition,omitempty"`
	DisableNextInTransition bool               `json:"disableNextInTransition"`
	ExpectedDuration        *time.Duration     `json:"expectedDuration,omitempty"`
}

// IsPlayable reports whether this Part can ever be taken (spec §3).
func (p Part) IsPlayable() bool {
	return !p.Invalid && !p.Floated
}
